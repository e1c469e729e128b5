package ods

import "errors"

var (
	// ErrNotReadable is returned by Open when the source file cannot be read.
	ErrNotReadable = errors.New("file not readable")
	// ErrFormat is returned by Open when the file is not an OpenDocument archive.
	ErrFormat = errors.New("not an OpenDocument archive")
	// ErrClosed is returned by Rewind after Close.
	ErrClosed = errors.New("reader closed")
)
