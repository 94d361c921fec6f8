package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
)

// DefaultDownloadTimeout bounds a whole archive download.
const DefaultDownloadTimeout = 5 * time.Minute

// Downloader fetches remote scanner archives over HTTP(S).
type Downloader struct {
	httpClient *http.Client
	progress   io.Writer
	logger     hclog.Logger
}

// NewDownloader creates a downloader. Progress is written to progress as
// the transfer advances; pass io.Discard to silence it.
func NewDownloader(timeout time.Duration, progress io.Writer, logger hclog.Logger) *Downloader {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: timeout},
		progress:   progress,
		logger:     logger.Named("download"),
	}
}

// Download streams the archive at url into targetPath, reporting
// size-aware progress when the server declares a content length.
func (d *Downloader) Download(ctx context.Context, url, targetPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "invalid download URL: " + url, Err: err}
	}
	req.Header.Set("User-Agent", "codescope-cli/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "download failed: " + url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.SourceInvalidError{Reason: fmt.Sprintf("download failed with status %d: %s", resp.StatusCode, url)}
	}

	out, err := os.Create(targetPath)
	if err != nil {
		return &domain.SourceInvalidError{Reason: "cannot create download target", Err: err}
	}
	defer out.Close()

	total := resp.ContentLength
	if total > 0 {
		fmt.Fprintf(d.progress, "Downloading scanner from %s (%.1f MB)\n", url, float64(total)/1024/1024)
	} else {
		fmt.Fprintf(d.progress, "Downloading scanner from %s\n", url)
	}

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return &domain.SourceInvalidError{Reason: "failed writing download", Err: err}
			}
			downloaded += int64(n)
			if total > 0 {
				fmt.Fprintf(d.progress, "\rDownloaded %.1f MB", float64(downloaded)/1024/1024)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return &domain.SourceInvalidError{Reason: "download interrupted: " + url, Err: readErr}
		}
	}
	if total > 0 {
		fmt.Fprintln(d.progress)
	}

	d.logger.Debug("download completed", "url", url, "bytes", downloaded)
	return nil
}
