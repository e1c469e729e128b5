// Package odf opens OpenDocument containers and stages their content
// payload on disk.
package odf

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"
)

const (
	// ContentName is the archive entry holding the document body.
	ContentName = "content.xml"
	// MimetypeName is the archive entry declaring the media type.
	MimetypeName = "mimetype"
	// SpreadsheetMimetype is the media type of an ODF spreadsheet.
	SpreadsheetMimetype = "application/vnd.oasis.opendocument.spreadsheet"
)

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var (
	// ErrNotArchive is returned by Open for files that are not ZIP archives.
	ErrNotArchive = errors.New("not a zip archive")
	// ErrOLEContainer is returned by Open for OLE compound files.
	ErrOLEContainer = errors.New("OLE compound file, not an OpenDocument archive")
)

// Archive is an open OpenDocument container.
type Archive struct {
	zipReader *zip.ReadCloser
	mimetype  string
}

// Open opens the container at path. Files that are not ZIP archives fail
// with ErrNotArchive, or ErrOLEContainer when they carry an OLE signature
// (encrypted packages and legacy binary workbooks).
func Open(path string) (*Archive, error) {
	zipReader, err := zip.OpenReader(path)
	if err != nil {
		if kind, ok := sniffOLE(path); ok {
			return nil, fmt.Errorf("%w (%s)", ErrOLEContainer, kind)
		}
		return nil, fmt.Errorf("%w: %w", ErrNotArchive, err)
	}

	archive := &Archive{
		zipReader: zipReader,
	}
	archive.readMimetype()

	return archive, nil
}

// readMimetype loads the mimetype entry. A missing or unreadable entry
// leaves the mimetype empty.
func (a *Archive) readMimetype() {
	file, err := a.zipReader.Open(MimetypeName)
	if err != nil {
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 256))
	if err != nil {
		return
	}
	a.mimetype = strings.TrimSpace(string(data))
}

// Mimetype returns the declared media type, or "" when the archive has none.
func (a *Archive) Mimetype() string {
	return a.mimetype
}

// IsSpreadsheet reports whether the declared media type is an ODF spreadsheet.
func (a *Archive) IsSpreadsheet() bool {
	return a.mimetype == SpreadsheetMimetype
}

// Extract copies the content payload into dir. When the archive has no
// content.xml the returned Payload has an empty Path and no error.
func (a *Archive) Extract(dir string) (*Payload, error) {
	payload := &Payload{Dir: dir}

	var content *zip.File
	for _, file := range a.zipReader.File {
		if file.Name == ContentName {
			content = file
			break
		}
	}
	if content == nil {
		return payload, nil
	}

	src, err := content.Open()
	if err != nil {
		return payload, fmt.Errorf("failed to open %s: %w", ContentName, err)
	}
	defer src.Close()

	target := filepath.Join(dir, ContentName)
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return payload, fmt.Errorf("failed to create payload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return payload, fmt.Errorf("failed to extract %s: %w", ContentName, err)
	}
	if err := dst.Close(); err != nil {
		return payload, fmt.Errorf("failed to write payload file: %w", err)
	}

	payload.Path = target
	return payload, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.zipReader.Close()
}

// sniffOLE reports whether path is an OLE compound file and, if so, what
// kind of document it appears to hold.
func sniffOLE(path string) (string, bool) {
	file, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer file.Close()

	sig := make([]byte, len(oleSignature))
	if _, err := file.ReadAt(sig, 0); err != nil || !bytes.Equal(sig, oleSignature) {
		return "", false
	}

	doc, err := mscfb.New(file)
	if err != nil {
		return "damaged compound file", true
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptedPackage":
			return "encrypted package", true
		case "Workbook", "Book":
			return "legacy binary workbook", true
		}
	}
	return "compound file", true
}
