package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/gig"
)

// GigCmd groups the employer's gig commands
var GigCmd = &cobra.Command{
	Use:   "gig",
	Short: "Post and list gigs",
	Long: `Post and list gigs on the board.

Gigs are stored newest first and shared with every other process using the
same store.

Examples:
  cashngo gig post --title "Flyer design" --category Design --payout 500
  cashngo gig post --title "Tutor" --payout 200 --payout-type hourly
  cashngo gig ls`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var gigPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a new gig",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in board.GigInput
		in.Title, _ = cmd.Flags().GetString("title")
		in.Category, _ = cmd.Flags().GetString("category")
		in.Description, _ = cmd.Flags().GetString("description")
		in.Requirements, _ = cmd.Flags().GetString("requirements")
		in.PayoutAmount, _ = cmd.Flags().GetFloat64("payout")
		payoutType, _ := cmd.Flags().GetString("payout-type")
		in.PayoutType = gig.PayoutType(payoutType)
		in.EmployerID, _ = cmd.Flags().GetString("employer")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			g, err := e.board.PostGig(ctx, in)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Posted %q (%s)\n", g.Title, g.ID)
			return nil
		})
	},
}

var gigLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List posted gigs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			gigs := e.board.PostedGigs(ctx)
			if len(gigs) == 0 {
				pterm.Info.Println("No gigs posted yet")
				return nil
			}
			return renderGigs(gigs)
		})
	},
}

func renderGigs(gigs []gig.Gig) error {
	data := pterm.TableData{{"ID", "Title", "Category", "Payout", "Status", "Posted"}}
	for _, g := range gigs {
		data = append(data, []string{
			g.ID,
			g.Title,
			g.Category,
			formatPayout(g.PayoutAmount, g.PayoutType),
			string(g.Status),
			g.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatPayout(amount float64, payoutType gig.PayoutType) string {
	if payoutType == gig.PayoutHourly {
		return fmt.Sprintf("₹%.0f/hr", amount)
	}
	return fmt.Sprintf("₹%.0f", amount)
}

func init() {
	gigPostCmd.Flags().String("title", "", "Gig title (required)")
	gigPostCmd.Flags().String("category", "", "Category, e.g. Design")
	gigPostCmd.Flags().String("description", "", "What the work involves")
	gigPostCmd.Flags().String("requirements", "", "Skills or tools required")
	gigPostCmd.Flags().Float64("payout", 0, "Payout amount")
	gigPostCmd.Flags().String("payout-type", string(gig.PayoutFixed), "Payout type: fixed or hourly")
	gigPostCmd.Flags().String("employer", "", "Employer id")
	_ = gigPostCmd.MarkFlagRequired("title")

	GigCmd.AddCommand(gigPostCmd)
	GigCmd.AddCommand(gigLsCmd)
}
