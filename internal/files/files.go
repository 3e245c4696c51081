// Package files handles uploaded file attachments: staging, type detection,
// and distilling each supported format into a textual summary suitable for
// inclusion in an LLM prompt.
package files

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Type identifies the detected format of an uploaded file.
type Type string

const (
	TypeZip      Type = "zip"
	TypeCSV      Type = "csv"
	TypeExcel    Type = "excel"
	TypeMarkdown Type = "markdown"
	TypeUnknown  Type = "unknown"
)

var extensionTypes = map[string]Type{
	".zip":  TypeZip,
	".csv":  TypeCSV,
	".xlsx": TypeExcel,
	".xls":  TypeExcel,
	".md":   TypeMarkdown,
}

// IsAllowed reports whether the filename carries one of the allowed extensions.
func IsAllowed(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// SafeName reduces a client-supplied filename to a safe base name, stripping
// any path components and replacing characters outside [A-Za-z0-9._-].
func SafeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "._")
	if name == "" {
		name = "upload"
	}
	return name
}

// Detect determines the file type based on extension, falling back to content
// sniffing for unknown extensions: the file is probed as CSV first, then as an
// Excel workbook.
func Detect(path string) Type {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}

	if probeCSV(path) {
		return TypeCSV
	}
	if probeExcel(path) {
		return TypeExcel
	}

	return TypeUnknown
}

func probeCSV(path string) bool {
	sample, err := readSample(path, 512)
	if err != nil || len(sample) == 0 {
		return false
	}
	// Binary content (NUL bytes) is never CSV, even if it splits into fields.
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	return parsesAsCSV(sample)
}

func probeExcel(path string) bool {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func readSample(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// Collect extracts a textual summary from the file at path. The summary shape
// depends on the detected type; unsupported types yield a fixed marker string
// so the caller can still forward something meaningful to the model.
func Collect(path string, previewRows int) (string, error) {
	switch Detect(path) {
	case TypeZip:
		return summarizeZip(path, previewRows)
	case TypeCSV:
		return summarizeCSV(path, previewRows)
	case TypeExcel:
		return summarizeExcel(path, previewRows)
	case TypeMarkdown:
		return summarizeMarkdown(path)
	default:
		return "Unsupported file type", nil
	}
}

func summarizeMarkdown(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown file: %w", err)
	}
	return "Markdown file content:\n" + string(content), nil
}
