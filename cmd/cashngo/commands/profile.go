package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/gig"
)

// ProfileCmd shows the worker profile and wallet
var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the worker profile and wallet",
	Long: `Show the signed-in worker's profile and wallet from the marketplace API,
together with the current course and their stored applications.

The built-in demo profile is shown when the API is unreachable.

Examples:
  cashngo profile
  cashngo profile --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			profile := e.catalog().Profile(ctx)
			if jsonOutput {
				data, err := json.MarshalIndent(profile, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			apps := e.board.ApplicationsFor(ctx, profile.ID)
			return pterm.DefaultTable.WithData(profileRows(profile, e.board.CurrentCourse(ctx), apps)).Render()
		})
	},
}

func profileRows(p gig.UserProfile, course string, apps []gig.Application) pterm.TableData {
	if course == "" {
		course = "-"
	}
	counts := gig.CountByStatus(apps)
	return pterm.TableData{
		{"Name", p.Name},
		{"Email", p.Email},
		{"University", p.University},
		{"Skills", strings.Join(p.Skills, ", ")},
		{"Wallet", fmt.Sprintf("₹%.2f", p.WalletBalance)},
		{"Gigs completed", strconv.Itoa(p.GigsCompleted)},
		{"Rating", fmt.Sprintf("%.1f", p.Rating)},
		{"Course", course},
		{"Applications", fmt.Sprintf("%d (%d pending, %d accepted, %d rejected)",
			len(apps), counts[gig.ApplicationPending], counts[gig.ApplicationAccepted], counts[gig.ApplicationRejected])},
	}
}

func init() {
	ProfileCmd.Flags().BoolP("json", "j", false, "Output the profile as JSON")
}
