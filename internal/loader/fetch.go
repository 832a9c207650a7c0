package loader

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FetchShapefile downloads a boundary ZIP, extracts it, and returns the
// path of the contained .shp file. The limiter paces requests against the
// Census download servers.
func FetchShapefile(ctx context.Context, client *http.Client, limiter *rate.Limiter, url, destDir string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "loader: wait for rate limiter")
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "loader: create dir %s", destDir)
	}

	zipPath := filepath.Join(destDir, filepath.Base(url))
	zap.L().Info("loader: downloading shapefile", zap.String("url", url))
	if err := downloadFile(ctx, client, url, zipPath); err != nil {
		return "", eris.Wrapf(err, "loader: download %s", url)
	}

	if err := extractZIP(zipPath, destDir); err != nil {
		return "", eris.Wrapf(err, "loader: extract %s", zipPath)
	}

	shpPath, err := findFileByExt(destDir, ".shp")
	if err != nil {
		return "", err
	}
	return shpPath, nil
}

// downloadFile downloads a URL to a local file.
func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrap(err, "write file")
	}

	return nil
}

// extractZIP extracts a ZIP archive flat into the destination directory.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}

	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}
