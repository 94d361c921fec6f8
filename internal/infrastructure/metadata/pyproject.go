package metadata

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"codescope.dev/cli/internal/core/domain"
)

// pyprojectFile mirrors the parts of pyproject.toml the installer reads:
// the standard project version and the codescope vendor section.
type pyprojectFile struct {
	Project struct {
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Codescope struct {
			Scanner manifestSection `toml:"scanner"`
		} `toml:"codescope"`
	} `toml:"tool"`
}

// manifestSection is the [tool.codescope.scanner] table a Python scanner
// declares.
type manifestSection struct {
	Name        string   `toml:"scanner_name"`
	Org         string   `toml:"scanner_org"`
	Description string   `toml:"scanner_description"`
	Extensions  []string `toml:"scanner_extensions"`
	Entrypoint  string   `toml:"scanner_entrypoint"`
}

// ParseManifest reads a Python scanner's pyproject.toml and extracts its
// declared metadata. Detectors stay empty here; they are collected from
// the live scanner at registration time.
func ParseManifest(manifestPath string) (domain.ScannerMetadata, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return domain.ScannerMetadata{}, &domain.MetadataInvalidError{Reason: "cannot read pyproject.toml", Err: err}
	}

	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.ScannerMetadata{}, &domain.MetadataInvalidError{Reason: "malformed pyproject.toml", Err: err}
	}

	section := file.Tool.Codescope.Scanner
	if section.Name == "" {
		return domain.ScannerMetadata{}, &domain.MetadataInvalidError{
			Reason: "pyproject.toml is missing scanner_name in the [tool.codescope.scanner] section",
		}
	}

	version := file.Project.Version
	if version == "" {
		version = "unknown"
	}
	org := section.Org
	if org == "" {
		org = "unknown"
	}
	extensions := section.Extensions
	if extensions == nil {
		extensions = []string{}
	}

	return domain.ScannerMetadata{
		Name:        section.Name,
		Org:         org,
		Version:     version,
		Description: section.Description,
		Entrypoint:  section.Entrypoint,
		Extensions:  extensions,
		Detectors:   map[string]domain.DetectorMetadata{},
	}, nil
}
