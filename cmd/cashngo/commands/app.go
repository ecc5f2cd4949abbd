package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/gig"
)

// AppCmd groups application commands for workers and employers
var AppCmd = &cobra.Command{
	Use:   "app",
	Short: "Apply for gigs and decide on applications",
	Long: `Apply for gigs and decide on applications.

Workers apply with "app apply". Employers list the applications to their
posted gigs with "app ls --relevant" and accept or reject pending ones.

Examples:
  cashngo app apply --gig <gig-id> --applicant w1 --name Asha
  cashngo app ls --relevant
  cashngo app ls --applicant w1
  cashngo app accept <application-id>
  cashngo app status <application-id> pending`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var appApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply for a gig",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in board.ApplyInput
		in.GigID, _ = cmd.Flags().GetString("gig")
		in.GigTitle, _ = cmd.Flags().GetString("title")
		in.Company, _ = cmd.Flags().GetString("company")
		in.ApplicantID, _ = cmd.Flags().GetString("applicant")
		in.ApplicantName, _ = cmd.Flags().GetString("name")
		in.CoverLetter, _ = cmd.Flags().GetString("cover")
		in.PortfolioLink, _ = cmd.Flags().GetString("portfolio")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			app, err := e.board.Apply(ctx, in)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Applied to %q as %s (%s)\n", app.GigTitle, app.ApplicantName, app.ID)
			return nil
		})
	},
}

var appLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		relevant, _ := cmd.Flags().GetBool("relevant")
		applicant, _ := cmd.Flags().GetString("applicant")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			var apps []gig.Application
			switch {
			case relevant:
				apps = e.board.RelevantApplications(ctx)
			case applicant != "":
				apps = e.board.ApplicationsFor(ctx, applicant)
			default:
				apps = e.board.Applications(ctx)
			}
			if len(apps) == 0 {
				pterm.Info.Println("No applications")
				return nil
			}
			return renderApplications(apps)
		})
	},
}

func renderApplications(apps []gig.Application) error {
	data := pterm.TableData{{"ID", "Gig", "Company", "Applicant", "Status", "Applied"}}
	for _, a := range apps {
		data = append(data, []string{
			a.ID,
			a.GigTitle,
			a.Company,
			a.ApplicantName,
			colorStatus(a.Status),
			a.Timestamp.Local().Format("2006-01-02 15:04"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func colorStatus(s gig.ApplicationStatus) string {
	switch s {
	case gig.ApplicationAccepted:
		return pterm.Green(string(s))
	case gig.ApplicationRejected:
		return pterm.Red(string(s))
	default:
		return pterm.Yellow(string(s))
	}
}

func decideCmd(use, short string, decide func(b *board.Board, ctx context.Context, id string) (gig.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <application-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				app, err := decide(e.board, ctx, args[0])
				if err != nil {
					return err
				}
				pterm.Success.Printf("%s's application to %q is now %s\n", app.ApplicantName, app.GigTitle, app.Status)
				return nil
			})
		},
	}
}

var appStatusCmd = &cobra.Command{
	Use:   "status <application-id> <pending|accepted|rejected>",
	Short: "Set an application's status directly",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			app, err := e.board.UpdateApplicationStatus(ctx, args[0], gig.ApplicationStatus(args[1]))
			if err != nil {
				return err
			}
			pterm.Success.Printf("Application %s is now %s\n", app.ID, app.Status)
			return nil
		})
	},
}

func init() {
	appApplyCmd.Flags().String("gig", "", "Gig id (required)")
	appApplyCmd.Flags().String("title", "", "Gig title when the gig is not on this board")
	appApplyCmd.Flags().String("company", "", "Company when the gig is not on this board")
	appApplyCmd.Flags().String("applicant", "", "Applicant id")
	appApplyCmd.Flags().String("name", "", "Applicant display name")
	appApplyCmd.Flags().String("cover", "", "Cover letter")
	appApplyCmd.Flags().String("portfolio", "", "Portfolio link")
	_ = appApplyCmd.MarkFlagRequired("gig")

	appLsCmd.Flags().Bool("relevant", false, "Only applications to gigs posted on this board")
	appLsCmd.Flags().String("applicant", "", "Only applications by this applicant")

	AppCmd.AddCommand(appApplyCmd)
	AppCmd.AddCommand(appLsCmd)
	AppCmd.AddCommand(decideCmd("accept", "Accept a pending application", (*board.Board).Accept))
	AppCmd.AddCommand(decideCmd("reject", "Reject a pending application", (*board.Board).Reject))
	AppCmd.AddCommand(appStatusCmd)
}
