package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// CourseCmd manages the single current course enrolment
var CourseCmd = &cobra.Command{
	Use:   "course",
	Short: "Enrol in or drop the current course",
	Long: `Enrol in or drop the current course.

A worker follows one course at a time. Enrolling in another course while
enrolled fails until the current one is dropped.

Examples:
  cashngo course enroll excel-101
  cashngo course show
  cashngo course drop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var courseEnrollCmd = &cobra.Command{
	Use:   "enroll <course-id>",
	Short: "Enrol in a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.board.Enroll(ctx, args[0]); err != nil {
				return err
			}
			pterm.Success.Printf("Enrolled in %s\n", args[0])
			return nil
		})
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current course",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if current := e.board.CurrentCourse(ctx); current != "" {
				pterm.Info.Printf("Current course: %s\n", current)
			} else {
				pterm.Info.Println("Not enrolled in a course")
			}
			return nil
		})
	},
}

var courseDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the current course",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			e.board.DropCourse(ctx)
			pterm.Success.Println("Course dropped")
			return nil
		})
	},
}

// GuideCmd manages the first-run guide flag
var GuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "First-run guide flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var guideShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Report whether the guide should be shown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if e.board.ShouldShowGuide(ctx) {
				pterm.Info.Println("Guide not yet shown")
			} else {
				pterm.Info.Println("Guide already shown")
			}
			return nil
		})
	},
}

var guideDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Mark the guide as shown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			e.board.MarkGuideShown(ctx)
			pterm.Success.Println("Guide marked as shown")
			return nil
		})
	},
}

var guideResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Show the guide again on next start",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			e.board.ResetGuide(ctx)
			pterm.Success.Println("Guide reset")
			return nil
		})
	},
}

func init() {
	CourseCmd.AddCommand(courseEnrollCmd)
	CourseCmd.AddCommand(courseShowCmd)
	CourseCmd.AddCommand(courseDropCmd)

	GuideCmd.AddCommand(guideShowCmd)
	GuideCmd.AddCommand(guideDoneCmd)
	GuideCmd.AddCommand(guideResetCmd)
}
