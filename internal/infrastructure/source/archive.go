package source

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codescope.dev/cli/internal/core/domain"
)

// ExtractArchive unpacks a .zip, .tar.gz, or .tgz archive into destDir.
// Entries escaping the destination directory are rejected.
func ExtractArchive(archivePath, destDir string) error {
	switch archiveExt(archivePath) {
	case ".zip":
		return extractZip(archivePath, destDir)
	case ".tar.gz", ".tgz":
		return extractTarGz(archivePath, destDir)
	default:
		return &domain.SourceInvalidError{Reason: "unsupported archive format: " + filepath.Base(archivePath)}
	}
}

// archiveExt returns the archive extension of a path or URL, defaulting
// to .zip when unrecognized.
func archiveExt(locator string) string {
	lower := strings.ToLower(locator)
	for _, ext := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ".zip"
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "invalid zip archive: " + archivePath, Err: err}
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := sanitizeTarget(destDir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &domain.SourceInvalidError{Reason: "failed to create directory during extraction", Err: err}
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &domain.SourceInvalidError{Reason: "failed to create directory during extraction", Err: err}
		}
		src, err := file.Open()
		if err != nil {
			return &domain.SourceInvalidError{Reason: "corrupt zip entry: " + file.Name, Err: err}
		}
		if err := writeFile(target, src, file.Mode()); err != nil {
			src.Close()
			return err
		}
		src.Close()
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "cannot open archive: " + archivePath, Err: err}
	}
	defer f.Close()

	gzReader, err := gzip.NewReader(f)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "invalid gzip archive: " + archivePath, Err: err}
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &domain.SourceInvalidError{Reason: "corrupt tar archive: " + archivePath, Err: err}
		}

		target, err := sanitizeTarget(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &domain.SourceInvalidError{Reason: "failed to create directory during extraction", Err: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &domain.SourceInvalidError{Reason: "failed to create directory during extraction", Err: err}
			}
			if err := writeFile(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		}
	}
	return nil
}

// sanitizeTarget joins an archive entry name under destDir, rejecting
// entries that escape it.
func sanitizeTarget(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", &domain.SourceInvalidError{Reason: fmt.Sprintf("archive entry escapes extraction directory: %s", name)}
	}
	return target, nil
}

func writeFile(target string, src io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "failed to create file during extraction", Err: err}
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return &domain.SourceInvalidError{Reason: "failed to extract file", Err: err}
	}
	return nil
}
