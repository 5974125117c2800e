package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tyemirov/repomerge/internal/config"
	"github.com/tyemirov/repomerge/internal/output"
	"github.com/tyemirov/repomerge/internal/types"
	"github.com/tyemirov/repomerge/internal/utils"
)

const (
	errorCreateOutputFormat = "creating output file %s: %w"
	errorCloseOutputFormat  = "closing output file %s: %w"
	errorWriteOutputFormat  = "writing output file %s: %w"
	errorRenderTreeFormat   = "rendering tree: %w"

	logMessageSkippedDirectory  = "skipping unreadable directory"
	logMessageBinaryPlaceholder = "file is not valid UTF-8 text, writing placeholder"
	logMessageErrorPlaceholder  = "file could not be read, writing placeholder"
	logMessageIgnoredFolder     = "pruning ignored folder"
	logMessageCombineFinished   = "combined repository"

	logFieldPath  = "path"
	logFieldFiles = "files"
	logFieldBytes = "bytes"
)

var errNotRegularFile = errors.New("not a regular file")

// Combiner writes the combined document for a directory tree.
type Combiner struct {
	IgnoreSets  config.IgnoreSets
	PathMatcher config.PathMatcher
	Logger      *zap.Logger
}

// CombineFiles writes the tree of rootPath followed by the text of every
// file not excluded by the default and supplied ignore names.
func CombineFiles(rootPath string, outputPath string, ignoredFolders []string, ignoredFiles []string) error {
	combiner := Combiner{IgnoreSets: config.NewIgnoreSets(ignoredFolders, ignoredFiles)}
	_, combineError := combiner.CombineFiles(rootPath, outputPath)
	return combineError
}

// CombineFiles truncates outputPath and writes the combined document for rootDirectoryPath.
// Per-file read failures become placeholders; a partially written output is left
// in place when a fatal error is returned.
func (combiner *Combiner) CombineFiles(rootDirectoryPath string, outputFilePath string) (summary types.CombineSummary, err error) {
	logger := combiner.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	absoluteRootDirectoryPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return summary, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	absoluteOutputFilePath, absolutePathError := filepath.Abs(outputFilePath)
	if absolutePathError != nil {
		return summary, fmt.Errorf(errorAbsolutePathFormat, outputFilePath, absolutePathError)
	}
	summary.OutputPath = outputFilePath

	outputFile, createError := os.Create(outputFilePath)
	if createError != nil {
		return summary, fmt.Errorf(errorCreateOutputFormat, outputFilePath, createError)
	}
	document := output.NewDocumentWriter(outputFile)
	defer func() {
		flushError := document.Flush()
		closeError := outputFile.Close()
		summary.DocumentBytes = document.BytesWritten()
		if err != nil {
			return
		}
		if flushError != nil {
			err = fmt.Errorf(errorWriteOutputFormat, outputFilePath, flushError)
		} else if closeError != nil {
			err = fmt.Errorf(errorCloseOutputFormat, outputFilePath, closeError)
		}
	}()

	if writeError := document.WriteHeader(); writeError != nil {
		return summary, fmt.Errorf(errorWriteOutputFormat, outputFilePath, writeError)
	}
	treeRenderer := TreeRenderer{
		IgnoreSets:   combiner.IgnoreSets,
		PathMatcher:  combiner.PathMatcher,
		ExcludedPath: absoluteOutputFilePath,
	}
	treeLines, renderError := treeRenderer.RenderTree(absoluteRootDirectoryPath)
	if renderError != nil {
		return summary, fmt.Errorf(errorRenderTreeFormat, renderError)
	}
	summary.TreeLines = len(treeLines)
	if writeError := document.WriteTree(treeLines); writeError != nil {
		return summary, fmt.Errorf(errorWriteOutputFormat, outputFilePath, writeError)
	}

	walker := combineWalker{
		combiner:       combiner,
		logger:         logger,
		document:       document,
		summary:        &summary,
		rootPath:       absoluteRootDirectoryPath,
		outputFilePath: absoluteOutputFilePath,
	}
	if walkError := walker.walkDirectory(absoluteRootDirectoryPath); walkError != nil {
		return summary, walkError
	}
	if writeError := document.Flush(); writeError != nil {
		return summary, fmt.Errorf(errorWriteOutputFormat, outputFilePath, writeError)
	}
	logger.Debug(logMessageCombineFinished,
		zap.String(logFieldPath, outputFilePath),
		zap.Int(logFieldFiles, summary.Files),
		zap.Int64(logFieldBytes, summary.ContentBytes),
	)
	return summary, nil
}

// combineWalker carries the state of one top-down walk.
type combineWalker struct {
	combiner       *Combiner
	logger         *zap.Logger
	document       *output.DocumentWriter
	summary        *types.CombineSummary
	rootPath       string
	outputFilePath string
}

// walkDirectory emits the files of currentDirectoryPath before descending into
// its subdirectories, both in listing order.
func (walker *combineWalker) walkDirectory(currentDirectoryPath string) error {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		if currentDirectoryPath == walker.rootPath {
			return fmt.Errorf(errorReadDirectoryFormat, readDirectoryError)
		}
		relativeDirectoryPath := utils.RelativePathOrSelf(currentDirectoryPath, walker.rootPath)
		walker.logger.Warn(logMessageSkippedDirectory, zap.String(logFieldPath, relativeDirectoryPath), zap.Error(readDirectoryError))
		walker.summary.SkippedFolders = append(walker.summary.SkippedFolders, relativeDirectoryPath)
		return nil
	}

	var subdirectoryPaths []string
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		childPath := filepath.Join(currentDirectoryPath, entryName)
		relativeChildPath := utils.RelativePathOrSelf(childPath, walker.rootPath)

		if directoryEntry.IsDir() {
			if walker.combiner.IgnoreSets.IgnoresFolder(entryName) || walker.matchesPath(relativeChildPath, true) {
				walker.logger.Debug(logMessageIgnoredFolder, zap.String(logFieldPath, relativeChildPath))
				continue
			}
			subdirectoryPaths = append(subdirectoryPaths, childPath)
			continue
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 && isDirectoryFollowingLinks(childPath) {
			continue
		}
		if walker.combiner.IgnoreSets.IgnoresFile(entryName) || walker.matchesPath(relativeChildPath, false) {
			continue
		}
		if utils.SamePath(childPath, walker.outputFilePath) {
			continue
		}
		if writeError := walker.writeFileBlock(childPath, relativeChildPath); writeError != nil {
			return fmt.Errorf(errorWriteOutputFormat, walker.summary.OutputPath, writeError)
		}
	}

	for _, subdirectoryPath := range subdirectoryPaths {
		if walkError := walker.walkDirectory(subdirectoryPath); walkError != nil {
			return walkError
		}
	}
	return nil
}

func (walker *combineWalker) matchesPath(relativePath string, isDirectory bool) bool {
	if walker.combiner.PathMatcher == nil {
		return false
	}
	return walker.combiner.PathMatcher.MatchesPath(relativePath, isDirectory)
}

func (walker *combineWalker) writeFileBlock(filePath string, relativePath string) error {
	walker.document.BeginFile(relativePath)
	walker.summary.Files++

	fileContent, readError := readRegularFile(filePath)
	switch {
	case readError != nil:
		walker.summary.Placeholders++
		walker.logger.Warn(logMessageErrorPlaceholder, zap.String(logFieldPath, relativePath), zap.Error(readError))
		walker.document.WriteErrorPlaceholder(relativePath, readError)
	case !utils.IsDecodableText(fileContent):
		walker.summary.Placeholders++
		walker.logger.Debug(logMessageBinaryPlaceholder, zap.String(logFieldPath, relativePath))
		walker.document.WriteBinaryPlaceholder(relativePath)
	default:
		normalizedContent := utils.NormalizeLineEndings(string(fileContent))
		walker.summary.ContentBytes += int64(len(normalizedContent))
		walker.document.WriteContent(normalizedContent)
	}
	return walker.document.EndFile()
}

// readRegularFile refuses FIFOs, sockets and devices so a walk never blocks on them.
func readRegularFile(filePath string) ([]byte, error) {
	fileInfo, statError := os.Stat(filePath)
	if statError != nil {
		return nil, statError
	}
	if !fileInfo.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: errNotRegularFile}
	}
	return os.ReadFile(filePath)
}
