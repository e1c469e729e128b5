// Package ods reads OpenDocument spreadsheets (.ods) one row at a time.
//
// The reader extracts the content document of the archive into a private
// staging directory and walks it with a forward-only XML cursor, so memory
// use does not grow with the size of the sheet. Only the first table of the
// document is read.
//
// # Example Usage
//
//	reader, err := ods.Open("report.ods", ods.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer reader.Close()
//
//	for {
//		row, ok := reader.Next()
//		if !ok {
//			break
//		}
//		fmt.Println(reader.Position(), row)
//	}
//
// Cells are returned as raw text. An empty cell yields "" at its column
// position. When a cell holds several paragraphs only the last one is kept.
package ods

import (
	"fmt"
	"os"

	"github.com/hanpama/ods/internal/document"
	"github.com/hanpama/ods/internal/markup"
	"github.com/hanpama/ods/internal/odf"
	"github.com/hanpama/ods/internal/sheet"
)

// Row is one table row: the text of each cell in column order.
type Row = document.Row

// Open opens the spreadsheet at path and prepares it for reading.
//
// Open fails with ErrNotReadable when path cannot be read and with ErrFormat
// when the file is not a ZIP archive. An archive without a content document
// is not an error: the returned Reader reports HasMore() == false at once.
//
// The caller must Close the Reader to release the staging directory.
func Open(path string, cfg Config) (*Reader, error) {
	cfg.defaults()

	if err := checkReadable(path); err != nil {
		return nil, err
	}

	archive, err := odf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}
	defer archive.Close()

	if !archive.IsSpreadsheet() {
		cfg.Logger.Debug("unexpected mimetype", "path", path, "mimetype", archive.Mimetype())
	}

	reader := &Reader{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	if err := reader.load(archive); err != nil {
		reader.Close()
		return nil, err
	}

	return reader, nil
}

// load stages the content document and opens the cursor on it. On error
// the caller closes the reader, which removes whatever was staged.
func (r *Reader) load(archive *odf.Archive) error {
	dir, err := odf.NewStagingDir(r.cfg.TempDir)
	if err != nil {
		return err
	}
	r.payload = &odf.Payload{Dir: dir}

	payload, err := archive.Extract(dir)
	if err != nil {
		return err
	}
	r.payload = payload

	if !payload.Found() {
		r.logger.Debug("no content document in archive", "content", odf.ContentName)
		return nil
	}
	r.logger.Debug("extracted content document", "path", payload.Path)

	cursor, err := markup.Open(payload.Path)
	if err != nil {
		return err
	}
	r.cursor = cursor
	r.machine = sheet.New(cursor)
	r.valid = true

	return nil
}

func checkReadable(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotReadable, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotReadable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotReadable, path)
	}
	return nil
}
