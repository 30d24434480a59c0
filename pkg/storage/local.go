// Package storage keeps uploaded files on a filesystem and hands back the URL
// that names them.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// LocalUploader writes files under dir and names them below baseURL.
type LocalUploader struct {
	fs      afero.Fs
	dir     string
	baseURL string
}

// NewLocalUploader stores files on the OS filesystem.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	return NewUploader(afero.NewOsFs(), dir, baseURL)
}

// NewUploader stores files on fs. The directory is created if missing.
func NewUploader(fs afero.Fs, dir, baseURL string) (*LocalUploader, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalUploader{fs: fs, dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory files are written to.
func (u *LocalUploader) Dir() string { return u.dir }

// Upload writes data under a fresh name keeping the extension of name.
func (u *LocalUploader) Upload(name string, data []byte) (string, error) {
	stored := uuid.New().String() + strings.ToLower(filepath.Ext(name))
	target := filepath.Join(u.dir, stored)
	if err := afero.WriteFile(u.fs, target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	log.WithFields(log.Fields{"file": stored, "bytes": len(data)}).Debug("stored upload")
	return path.Join(u.baseURL, stored), nil
}

// Open reads back a file returned by Upload. URLs outside baseURL, or naming
// anything but a file directly under dir, report os.ErrNotExist.
func (u *LocalUploader) Open(url string) (io.ReadCloser, error) {
	name := url
	if u.baseURL != "" {
		if !strings.HasPrefix(url, u.baseURL+"/") {
			return nil, fmt.Errorf("no upload at %s: %w", url, os.ErrNotExist)
		}
		name = url[len(u.baseURL)+1:]
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("no upload at %s: %w", url, os.ErrNotExist)
	}
	f, err := u.fs.Open(filepath.Join(u.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	return f, nil
}
