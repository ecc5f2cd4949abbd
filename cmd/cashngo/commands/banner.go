package commands

import (
	"github.com/pterm/pterm"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/version"
)

// printStartupBanner prints the server startup message
func printStartupBanner(verbosity int, backend, dbPath string, port int) {
	info := version.Get()

	pterm.DefaultHeader.WithFullWidth().Println("CashnGo")
	pterm.Printf("%s %s (commit %s)\n", pterm.Green("Version:  "), info.Version, info.Short())
	pterm.Printf("%s %s\n", pterm.Green("Verbosity:"), logger.LevelName(verbosity))
	if backend == am.BackendRedis {
		pterm.Printf("%s redis\n", pterm.Green("Store:    "))
	} else {
		pterm.Printf("%s %s\n", pterm.Green("Store:    "), dbPath)
	}
	pterm.Printf("%s http://localhost:%d (views: ws://localhost:%d/ws)\n", pterm.Green("Listening:"), port, port)
	pterm.Println()
	pterm.Println(pterm.Gray("Press Ctrl+C to stop"))
}
