// Package types defines the data structures shared across repomerge packages.
package types

// CombineSummary captures aggregate information about one combine run.
type CombineSummary struct {
	OutputPath string
	TreeLines  int
	// Files counts every file block, including those holding a placeholder.
	Files        int
	Placeholders int
	ContentBytes int64
	// DocumentBytes is the size of the written document.
	DocumentBytes int64
	// SkippedFolders lists root-relative directories that could not be listed during the walk.
	SkippedFolders []string
}
