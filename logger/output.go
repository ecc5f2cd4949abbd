package logger

// OutputCategory defines a category of CLI output that can be enabled/disabled.
// Categories filter WHAT is shown, independent of log severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Command output

	// Level 1 (-v)
	OutputProgress   // Quiz progress, server startup
	OutputSyncEvents // External (cross-process) store changes

	// Level 2 (-vv)
	OutputStorageOps // Individual key reads/writes
	OutputHTTPCalls  // Inbound and outbound HTTP requests

	// Level 3 (-vvv)
	OutputSnapshots // Raw JSON snapshot bodies
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputProgress:   VerbosityInfo,
	OutputSyncEvents: VerbosityInfo,
	OutputStorageOps: VerbosityDebug,
	OutputHTTPCalls:  VerbosityDebug,
	OutputSnapshots:  VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
