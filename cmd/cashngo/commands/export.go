package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/storage"
)

// ExportCmd dumps every collection
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every collection",
	Long: `Dump every collection to stdout as read through the store, so missing
or corrupt values appear as their defaults.

Examples:
  cashngo export
  cashngo export --format yaml > backup.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			data, err := encodeSnapshot(snapshotOf(ctx, e.cols), format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

// Snapshot is the exported document
type Snapshot struct {
	PostedGigs      []gig.Gig         `json:"postedGigs"`
	Applications    []gig.Application `json:"applications"`
	CurrentCourseID *string           `json:"currentCourseId"`
	GuideShown      bool              `json:"guideShown_v2"`
}

func snapshotOf(ctx context.Context, cols *storage.Collections) Snapshot {
	snap := Snapshot{
		PostedGigs:      cols.PostedGigs.Read(ctx),
		Applications:    cols.Applications.Read(ctx),
		CurrentCourseID: cols.CurrentCourseID.Read(ctx),
		GuideShown:      cols.GuideShown.Read(ctx),
	}
	if snap.PostedGigs == nil {
		snap.PostedGigs = []gig.Gig{}
	}
	if snap.Applications == nil {
		snap.Applications = []gig.Application{}
	}
	return snap
}

// encodeSnapshot renders snap as json or yaml. YAML keeps the JSON field
// names by going through a generic document.
func encodeSnapshot(snap Snapshot, format string) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}

	switch format {
	case "json", "":
		return append(data, '\n'), nil
	case "yaml":
		var doc map[string]interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "convert snapshot")
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "marshal snapshot to YAML")
		}
		return out, nil
	default:
		return nil, errors.NewInvalidRequestError("unsupported format: %s (supported: json, yaml)", format)
	}
}

func init() {
	ExportCmd.Flags().String("format", "json", "Output format: json, yaml")
}
