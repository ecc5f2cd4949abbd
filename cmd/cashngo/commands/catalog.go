package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/unlock"
)

// CatalogCmd lists the marketplace catalog
var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the marketplace catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var catalogLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List catalog gigs and their lock state",
	Long: `List catalog gigs from the marketplace API (or the built-in sample
catalog when the API is unreachable). Locked gigs need a passed skill quiz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			return renderCatalog(e.catalog().List(ctx))
		})
	},
}

func renderCatalog(gigs []gig.CatalogGig) error {
	data := pterm.TableData{{"ID", "Title", "Company", "Skill", "Payout", "State"}}
	for _, g := range gigs {
		state := pterm.Green("open")
		if g.IsLocked {
			state = pterm.Yellow("locked")
		}
		data = append(data, []string{g.ID, g.Title, g.Company, g.SkillTag, formatPayout(g.Payout, gig.PayoutFixed), state})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// QuizCmd groups quiz commands
var QuizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take an unlock quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var quizTakeCmd = &cobra.Command{
	Use:   "take <catalog-gig-id>",
	Short: "Take the skill quiz for a catalog gig",
	Long: fmt.Sprintf(`Take the skill quiz for a catalog gig, one question at a time.
Answer with the option number. A score of %.0f%% or more unlocks the gig for
the rest of this run; with --apply the application is submitted right away.

Examples:
  cashngo quiz take c2
  cashngo quiz take c2 --apply --applicant w1 --name Asha`, unlock.PassThreshold),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gigID := args[0]
		applyAfter, _ := cmd.Flags().GetBool("apply")
		var in board.ApplyInput
		in.ApplicantID, _ = cmd.Flags().GetString("applicant")
		in.ApplicantName, _ = cmd.Flags().GetString("name")
		in.CoverLetter, _ = cmd.Flags().GetString("cover")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			cat := e.catalog()
			quiz, err := cat.StartQuiz(ctx, gigID)
			if err != nil {
				return err
			}

			result, err := runQuiz(cmd.InOrStdin(), cmd.OutOrStdout(), quiz)
			if err != nil {
				return err
			}

			var spinner *pterm.SpinnerPrinter
			if logger.ShouldOutput(e.verbosity, logger.OutputProgress) {
				spinner, _ = pterm.DefaultSpinner.Start("Scoring...")
			}
			state, err := cat.Complete(ctx, gigID, result)
			cat.Gate().Wait()
			if spinner != nil {
				_ = spinner.Stop()
			}
			if err != nil {
				return err
			}
			state = cat.Gate().State(gigID)

			printResult(result, state)
			if state != unlock.Unlocked || !applyAfter {
				return nil
			}

			app, err := cat.Apply(ctx, gigID, in)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Applied to %q as %s (%s)\n", app.GigTitle, app.ApplicantName, app.ID)
			return nil
		})
	},
}

// runQuiz reads one option number per question from in until the quiz is scored
func runQuiz(in io.Reader, out io.Writer, quiz gig.Quiz) (unlock.Result, error) {
	session := unlock.NewSession(quiz)
	if session.Total() == 0 {
		return unlock.Result{}, errors.NewInvalidRequestError("quiz %s has no questions", quiz.ID)
	}

	pterm.Fprintln(out, pterm.DefaultHeader.Sprint(quiz.Title))
	scanner := bufio.NewScanner(in)
	for {
		q, _ := session.Current()
		pterm.Fprintln(out, pterm.LightCyan(fmt.Sprintf("Question %d of %d", session.Index()+1, session.Total())))
		pterm.Fprintln(out, q.Prompt)
		for i, option := range q.Options {
			pterm.Fprintln(out, fmt.Sprintf("  %d) %s", i+1, option))
		}
		pterm.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return unlock.Result{}, errors.Wrap(err, "read answer")
			}
			return unlock.Result{}, errors.New("quiz abandoned")
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || session.Select(choice-1) != nil {
			pterm.Fprintln(out, pterm.Yellow(fmt.Sprintf("Pick a number between 1 and %d", len(q.Options))))
			continue
		}

		result, err := session.Next()
		if err != nil {
			return unlock.Result{}, err
		}
		if result != nil {
			return *result, nil
		}
	}
}

func printResult(result unlock.Result, state unlock.State) {
	summary := fmt.Sprintf("Score %.0f%% (%d/%d correct)", result.Score, result.Correct, result.Total)
	switch {
	case state == unlock.Unlocked:
		pterm.Success.Println(summary + ", gig unlocked")
	case result.Passed:
		pterm.Warning.Println(summary + ", but the result was not confirmed")
	default:
		pterm.Error.Printf("%s, %.0f%% needed to unlock\n", summary, unlock.PassThreshold)
	}
}

func init() {
	quizTakeCmd.Flags().Bool("apply", false, "Apply as soon as the gig unlocks")
	quizTakeCmd.Flags().String("applicant", "", "Applicant id for --apply")
	quizTakeCmd.Flags().String("name", "", "Applicant display name for --apply")
	quizTakeCmd.Flags().String("cover", "", "Cover letter for --apply")

	CatalogCmd.AddCommand(catalogLsCmd)
	QuizCmd.AddCommand(quizTakeCmd)
}
