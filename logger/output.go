package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: results, errors with hints
//	1 (-v)      - + Config source, operation summaries
//	2 (-vv)     - + HTTP requests, curl equivalents, search payloads
//	3 (-vvv)    - + Full request/response bodies

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Command output
	OutputErrors                        // Errors with hints

	// Level 1 (-v) - Informational
	OutputConfig        // Which config source won
	OutputOperationInfo // High-level operation summaries

	// Level 2 (-vv) - Detailed
	OutputHTTPCalls // HTTP requests made, as curl equivalents

	// Level 3 (-vvv) - Full dump
	OutputRequestBody  // Full HTTP request bodies
	OutputResponseBody // Full HTTP response bodies
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputConfig:        VerbosityInfo,
	OutputOperationInfo: VerbosityInfo,

	OutputHTTPCalls: VerbosityDebug,

	OutputRequestBody:  VerbosityAll,
	OutputResponseBody: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:       "results",
	OutputErrors:        "errors",
	OutputConfig:        "config",
	OutputOperationInfo: "operation-info",
	OutputHTTPCalls:     "http",
	OutputRequestBody:   "request-body",
	OutputResponseBody:  "response-body",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
