package odf

import (
	"fmt"
	"os"
)

const stagingPattern = "ods-*"

// Payload is a content document extracted into a private staging directory.
type Payload struct {
	// Dir is the staging directory owned by this payload.
	Dir string
	// Path is the extracted content.xml, or "" when the archive had none.
	Path string
}

// Found reports whether a content document was extracted.
func (p *Payload) Found() bool {
	return p.Path != ""
}

// Remove deletes the staging directory and everything in it.
func (p *Payload) Remove() error {
	if p.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(p.Dir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	p.Dir = ""
	p.Path = ""
	return nil
}

// NewStagingDir creates a fresh directory under parent for one payload.
func NewStagingDir(parent string) (string, error) {
	dir, err := os.MkdirTemp(parent, stagingPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}
