// Package config provides configuration management for the attic archive
// auditor.
package config

// Default configuration values.
const (
	// DefaultOutput is the default report format.
	DefaultOutput = "plain"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultRetentionDays is how long audit-log entries are kept.
	DefaultRetentionDays = 90

	// DefaultWorkers of zero lets the scanner size its pool to the CPU
	// count.
	DefaultWorkers = 0
)

// DefaultExclusions contains relative-path patterns excluded from every
// scan. Editor droppings and OS metadata have no place in an archive
// snapshot.
var DefaultExclusions = []string{
	".DS_Store",
	"**/.DS_Store",
	"Thumbs.db",
	"**/Thumbs.db",
}
