// SPDX-License-Identifier: MIT
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SVGMediaType is the only accepted upload type
const SVGMediaType = "image/svg+xml"

// DefaultMaxBytes bounds an upload when no limit is configured
const DefaultMaxBytes = 2 << 20

var (
	// ErrTooLarge is returned for uploads over the size limit
	ErrTooLarge = errors.New("file too large")
	// ErrNotSVG is returned for uploads that are not SVG documents
	ErrNotSVG = errors.New("file is not an svg")
)

// ReadSVG reads an uploaded SVG file and returns its text
func ReadSVG(file *multipart.FileHeader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if file.Size > maxBytes {
		return "", fmt.Errorf("%s: %w (%d bytes, limit %d)", file.Filename, ErrTooLarge, file.Size, maxBytes)
	}
	if !IsSVGFile(file.Filename) {
		return "", fmt.Errorf("%s: %w", file.Filename, ErrNotSVG)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return read(file.Filename, src, maxBytes)
}

// ReadSVGFile reads an SVG file from disk
func ReadSVGFile(path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return read(filepath.Base(path), f, maxBytes)
}

func read(name string, r io.Reader, maxBytes int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%s: %w (limit %d bytes)", name, ErrTooLarge, maxBytes)
	}
	if err := Validate(data); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(data), nil
}

// Validate checks the content of a file is an SVG document
func Validate(data []byte) error {
	detected := mimetype.Detect(data)
	if !detected.Is(SVGMediaType) {
		return fmt.Errorf("%w: detected %s", ErrNotSVG, detected.String())
	}
	return nil
}

// IsSVGFile checks if the uploaded file is an SVG based on extension
func IsSVGFile(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".svg"
}
