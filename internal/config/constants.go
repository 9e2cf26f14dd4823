package config

// Application constants
const (
	// Application Info
	AppName = "featurelab"

	// Dataset names served by the toy dataset registry
	DatasetIris   = "iris"
	DatasetDigits = "digits"

	// Missing value tokens recognised when a table is loaded
	MissingEmpty = ""
	MissingNA    = "NA"
	MissingNaN   = "NaN"
	MissingNil   = "<nil>"

	// Derived column written by the income workflow
	InequalityRatioColumn = "inequality_ratio"

	// Default dummy column separator, as in Sex_male
	DummySeparator = "_"

	// Request limits
	MaxVectorizeRecords = 10000
	MaxGridPoints       = 1_000_001

	// File Permissions
	DirPermissions  = 0755
	FilePermissions = 0644

	// Benchmark replications for the put pricer
	DefaultBenchmarkReps = 100
)

// MissingTokens returns the default set of missing value tokens
func MissingTokens() []string {
	return []string{MissingEmpty, MissingNA, MissingNaN, MissingNil}
}
