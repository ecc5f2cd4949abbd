package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/cmd/cashngo/commands"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cashngo",
	Short: "CashnGo - gigs, applications and skill-unlocked work for students",
	Long: `CashnGo - a gig marketplace for students.

Employers post gigs and decide on applications. Workers apply, enrol in a
course and unlock catalog gigs by passing a short skill quiz. Every command
works on the same persisted store, so a server and several CLI processes can
run side by side.

Available commands:
  gig     - Post and list gigs
  app     - Apply for gigs and decide on applications
  course  - Enrol in or drop the current course
  guide   - First-run guide flag
  catalog - Browse the marketplace catalog
  profile - Show the worker profile and wallet
  quiz    - Take an unlock quiz
  watch   - Follow store changes made by other processes
  export  - Dump every collection
  server  - Start the HTTP/WebSocket server
  am      - Show and validate configuration

Examples:
  cashngo gig post --title "Flyer design" --payout 500
  cashngo app ls --relevant
  cashngo quiz take c2 --apply
  cashngo server -v`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("db-path", "", "Database path (overrides config and DB_PATH)")

	rootCmd.AddCommand(commands.GigCmd)
	rootCmd.AddCommand(commands.AppCmd)
	rootCmd.AddCommand(commands.CourseCmd)
	rootCmd.AddCommand(commands.GuideCmd)
	rootCmd.AddCommand(commands.CatalogCmd)
	rootCmd.AddCommand(commands.ProfileCmd)
	rootCmd.AddCommand(commands.QuizCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(1)
	}
}
