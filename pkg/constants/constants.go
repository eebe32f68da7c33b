// Package constants holds the numeric, output format and default values
// shared across the calculators, the CLI and the server.
package constants

// Arithmetic
const (
	// MonthsPerYear converts annual rates and amounts to monthly ones
	MonthsPerYear = 12

	// DecimalPrecision scales values to whole cents
	DecimalPrecision = 100

	// PercentageMultiplier converts fractions to percentages
	PercentageMultiplier = 100.0

	// PerThousand is the unit used for insurance rates quoted per $1,000 of coverage
	PerThousand = 1000.0
)

// Output format constants
const (
	// OutputFormatMarkdown prints the raw Markdown reports
	OutputFormatMarkdown = "markdown"

	// OutputFormatPretty renders the Markdown reports for a terminal
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// OutputFormats lists every supported output format in display order.
var OutputFormats = []string{
	OutputFormatMarkdown,
	OutputFormatPretty,
	OutputFormatJSON,
	OutputFormatYAML,
	OutputFormatCSV,
}

// Configuration file constants
const (
	// DefaultConfigFile is the default batch configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRequestsPerSecond is the default per-client request rate
	DefaultRequestsPerSecond = 20.0

	// DefaultBurst is the default per-client burst size
	DefaultBurst = 40
)

// Optimizer defaults
const (
	// DefaultOptimizerTolerance is the default acceptable distance from the target
	DefaultOptimizerTolerance = 0.0001

	// DefaultOptimizerIterations bounds the bisection search
	DefaultOptimizerIterations = 60
)
