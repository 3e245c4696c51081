package files

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxZipEntrySize bounds how much of a single archive entry is extracted,
// so a small upload cannot decompress into an unbounded amount of disk.
const maxZipEntrySize = 256 * 1024 * 1024

// summarizeZip extracts each entry of the archive to a scratch directory and
// summarizes it with the regular per-type rules. Nested archives are handled
// by the same recursion.
func summarizeZip(path string, previewRows int) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open ZIP archive: %w", err)
	}
	defer zr.Close()

	scratch, err := os.MkdirTemp("", "assignmate-zip-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	var info []string
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		dest := filepath.Join(scratch, SafeName(entry.Name))
		if err := extractEntry(entry, dest); err != nil {
			info = append(info, fmt.Sprintf("File '%s' in ZIP could not be read: %v", entry.Name, err))
			continue
		}

		entryInfo, err := Collect(dest, previewRows)
		if err != nil {
			entryInfo = fmt.Sprintf("Error processing file: %v", err)
		}
		info = append(info, fmt.Sprintf("File '%s' in ZIP contains:\n%s", entry.Name, entryInfo))

		if err := os.Remove(dest); err != nil {
			return "", fmt.Errorf("failed to remove scratch file: %w", err)
		}
	}

	return strings.Join(info, "\n"), nil
}

func extractEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(src, maxZipEntrySize+1))
	if err != nil {
		return err
	}
	if n > maxZipEntrySize {
		return fmt.Errorf("entry exceeds %d bytes", maxZipEntrySize)
	}
	return out.Close()
}
