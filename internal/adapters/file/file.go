package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"upscaler/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// Store implements port.FileStore on the local filesystem.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}

	return nil
}

func (s *Store) ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("dir", dir).Msg("input directory does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !isRegularFile(dir, entry) {
			continue
		}

		if !domain.IsSupportedExtension(filepath.Ext(entry.Name())) {
			log.Debug().Str("file", entry.Name()).Msg("skipping unsupported file")
			continue
		}

		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(paths)

	return paths, nil
}

// isRegularFile reports whether entry is a regular file or a symlink resolving to one.
func isRegularFile(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}

	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		log.Debug().Err(err).Str("file", entry.Name()).Msg("skipping unresolvable symlink")
		return false
	}

	return info.Mode().IsRegular()
}

func (s *Store) Move(path, dir string) (string, error) {
	target := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("error moving %s to %s: %w", path, dir, err)
	}

	log.Debug().Str("from", path).Str("to", target).Msg("moved file")

	return target, nil
}

// WriteAtomic streams write's output into a temp file next to path and renames it into place once write
// succeeds, so path never holds a partial file. It returns the number of bytes written.
func WriteAtomic(path string, write func(w io.Writer) error) (int64, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return 0, err
	}

	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp", id.String()))

	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("error creating temp file %w", err)
	}

	cw := &countingWriter{w: f}
	if err := write(cw); err != nil {
		f.Close()
		RemoveTempFile(tmp)
		return 0, err
	}

	if err := f.Close(); err != nil {
		RemoveTempFile(tmp)
		return 0, fmt.Errorf("error closing temp file %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		RemoveTempFile(tmp)
		return 0, fmt.Errorf("error renaming temp file %w", err)
	}

	log.Debug().Str("path", path).Int64("bytes", cw.n).Msg("wrote file")

	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Download returns the byte content of a file on a provided URL.
func Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	return buf, nil
}

// RemoveTempFile removes a temporary file and logs the outcome.
func RemoveTempFile(path string) {
	err := os.Remove(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
}
