package output

const (
	// TreeBranchConnector precedes a non-final sibling.
	TreeBranchConnector = "├── "
	// TreeLastConnector precedes the final sibling.
	TreeLastConnector = "└── "
	// TreeContinuationPrefix indents children of a non-final ancestor.
	TreeContinuationPrefix = "│   "
	// TreeEmptyPrefix indents children of a final ancestor.
	TreeEmptyPrefix = "    "
)

// FormatTreeLine renders a single tree entry under the accumulated prefix.
func FormatTreeLine(prefix string, name string, isLast bool) string {
	if isLast {
		return prefix + TreeLastConnector + name
	}
	return prefix + TreeBranchConnector + name
}

// ChildPrefix extends prefix for the children of an entry.
func ChildPrefix(prefix string, isLast bool) string {
	if isLast {
		return prefix + TreeEmptyPrefix
	}
	return prefix + TreeContinuationPrefix
}
