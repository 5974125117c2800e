// Package output renders the combined repository document.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	separatorWidth = 50

	repositoryStructureHeader = "Repository Structure:"
	fileHeaderFormat          = "File: %s\n"
	binaryPlaceholderFormat   = "[Unable to read file: %s. It may be a binary file.]\n"
	errorPlaceholderFormat    = "[Error reading file %s: %v]\n"
)

var (
	// HeavySeparator frames the tree and every file header.
	HeavySeparator = strings.Repeat("=", separatorWidth)
	// LightSeparator closes every file block.
	LightSeparator = strings.Repeat("-", separatorWidth)
)

// DocumentWriter writes the sections of a combined document in order.
// The first write error is retained and returned by every later call and by Flush.
type DocumentWriter struct {
	writer       *bufio.Writer
	writeError   error
	bytesWritten int64
}

// NewDocumentWriter buffers output to destination.
func NewDocumentWriter(destination io.Writer) *DocumentWriter {
	return &DocumentWriter{writer: bufio.NewWriter(destination)}
}

func (document *DocumentWriter) writeString(text string) error {
	if document.writeError != nil {
		return document.writeError
	}
	written, err := document.writer.WriteString(text)
	document.bytesWritten += int64(written)
	if err != nil {
		document.writeError = err
	}
	return document.writeError
}

// WriteHeader writes the document banner and its separator.
func (document *DocumentWriter) WriteHeader() error {
	document.writeString(repositoryStructureHeader + "\n")
	return document.writeString(HeavySeparator + "\n")
}

// WriteTree writes the tree lines, a blank line and the closing separator.
func (document *DocumentWriter) WriteTree(treeLines []string) error {
	document.writeString(strings.Join(treeLines, "\n") + "\n\n")
	return document.writeString(HeavySeparator + "\n\n")
}

// BeginFile writes the header of a file block.
func (document *DocumentWriter) BeginFile(relativePath string) error {
	document.writeString(fmt.Sprintf(fileHeaderFormat, relativePath))
	return document.writeString(HeavySeparator + "\n")
}

// WriteContent writes file text verbatim.
func (document *DocumentWriter) WriteContent(content string) error {
	return document.writeString(content)
}

// WriteBinaryPlaceholder replaces content that could not be decoded as text.
func (document *DocumentWriter) WriteBinaryPlaceholder(relativePath string) error {
	return document.writeString(fmt.Sprintf(binaryPlaceholderFormat, relativePath))
}

// WriteErrorPlaceholder replaces content that could not be read.
func (document *DocumentWriter) WriteErrorPlaceholder(relativePath string, readError error) error {
	return document.writeString(fmt.Sprintf(errorPlaceholderFormat, relativePath, readError))
}

// EndFile closes a file block.
func (document *DocumentWriter) EndFile() error {
	return document.writeString("\n" + LightSeparator + "\n\n")
}

// BytesWritten reports how many bytes were accepted so far.
func (document *DocumentWriter) BytesWritten() int64 {
	return document.bytesWritten
}

// Flush pushes buffered output to the destination.
func (document *DocumentWriter) Flush() error {
	if document.writeError != nil {
		return document.writeError
	}
	if err := document.writer.Flush(); err != nil {
		document.writeError = err
	}
	return document.writeError
}
