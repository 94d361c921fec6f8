package domain

import (
	"fmt"
	"strings"
)

// SourceType identifies where a scanner install request points to.
type SourceType string

const (
	// SourceLocalPath is an existing local file or directory, used in
	// place after resolution.
	SourceLocalPath SourceType = "local_path"
	// SourceLocalArchive is an existing local archive file, extracted
	// into a staging directory before inspection.
	SourceLocalArchive SourceType = "local_archive"
	// SourceRemoteArchive is an archive fetched over HTTP(S) and then
	// extracted like a local archive.
	SourceRemoteArchive SourceType = "remote_archive"
)

// ParseSourceType converts a CLI string into a SourceType.
func ParseSourceType(value string) (SourceType, error) {
	switch SourceType(strings.ToLower(strings.TrimSpace(value))) {
	case SourceLocalPath:
		return SourceLocalPath, nil
	case SourceLocalArchive:
		return SourceLocalArchive, nil
	case SourceRemoteArchive:
		return SourceRemoteArchive, nil
	}
	return "", fmt.Errorf("unknown source type: %q", value)
}

// ScannerSource is an install request origin: a source type plus its
// locator (filesystem path or URL).
type ScannerSource struct {
	Type    SourceType
	Locator string
}

// InferSourceType guesses the source type from the locator shape:
// http(s) URLs are remote archives, paths with a known archive extension
// are local archives, and anything else is a local path.
func InferSourceType(locator string) SourceType {
	lower := strings.ToLower(locator)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceRemoteArchive
	}
	for _, ext := range []string{".zip", ".tar.gz", ".tgz"} {
		if strings.HasSuffix(lower, ext) {
			return SourceLocalArchive
		}
	}
	return SourceLocalPath
}
