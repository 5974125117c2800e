// Package clipboard provides access to the system clipboard.
package clipboard

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

const errorReadDocumentFormat = "reading %s for clipboard: %w"

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	writeAll func(text string) error
}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{writeAll: clipboard.WriteAll}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.writeAll == nil {
		return clipboard.WriteAll(text)
	}
	return service.writeAll(text)
}

// CopyFile places the content of the file at path on the clipboard.
func CopyFile(copier Copier, path string) error {
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf(errorReadDocumentFormat, path, readErr)
	}
	return copier.Copy(string(content))
}

var _ Copier = (*Service)(nil)
