// Package utils contains general helper functions used across repomerge.
package utils

import (
	"path/filepath"
	"strings"
)

// DeduplicatePatterns removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// TrimNames trims surrounding whitespace from each name and drops empty results.
func TrimNames(names []string) []string {
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == EmptyString {
			continue
		}
		trimmed = append(trimmed, trimmedName)
	}
	return trimmed
}

// RelativePathOrSelf calculates the relative path from root to fullPath using
// the host separator. Returns the cleaned fullPath if relative calculation fails
// and "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return "."
	}
	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return relativePath
}

// SamePath reports whether two paths resolve to the same absolute location.
func SamePath(firstPath, secondPath string) bool {
	if firstPath == EmptyString || secondPath == EmptyString {
		return false
	}
	firstAbsolute, firstErr := filepath.Abs(firstPath)
	secondAbsolute, secondErr := filepath.Abs(secondPath)
	if firstErr != nil || secondErr != nil {
		return false
	}
	return filepath.Clean(firstAbsolute) == filepath.Clean(secondAbsolute)
}
