// Package avatar stores profile pictures on disk and hands back their public URL.
package avatar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"multicurrency_wallet/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// URLPrefix is the route the upload folder is served under
const URLPrefix = "/uploads"

// allowed maps accepted extensions to the content type their bytes must sniff as
var allowed = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// Store writes avatars into a directory
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates the upload directory if needed
func NewStore(dir, publicURL string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload folder: %w", err)
	}
	return &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(publicURL, "/") + URLPrefix,
		maxBytes: maxBytes,
	}, nil
}

// Dir is the folder files are written to
func (s *Store) Dir() string {
	return s.dir
}

// Allowed reports whether filename carries an accepted image extension
func Allowed(filename string) bool {
	_, ok := allowed[extension(filename)]
	return ok
}

// Save validates and stores one upload, returning the URL it can be fetched from.
// The stored name is random so two users uploading "me.png" never collide.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	ext := extension(filename)
	want, ok := allowed[ext]
	if !ok {
		return "", &domain.UploadError{Filename: filename, Reason: "allowed image types are png, jpg, jpeg, gif"}
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", &domain.UploadError{Filename: filename, Reason: fmt.Sprintf("file exceeds %d bytes", s.maxBytes)}
	}
	if len(data) == 0 {
		return "", &domain.UploadError{Filename: filename, Reason: "file is empty"}
	}

	detected := mimetype.Detect(data)
	if !detected.Is(want) {
		return "", &domain.UploadError{Filename: filename, Reason: "content is " + detected.String() + ", not " + want}
	}

	name := uuid.NewString() + "." + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close avatar file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"original": filename,
		"stored":   name,
		"bytes":    len(data),
	}).Info("Avatar stored")
	return s.baseURL + "/" + name, nil
}

// Remove deletes a file previously returned by Save. URLs that do not point
// into the upload folder are refused.
func (s *Store) Remove(url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("avatar %q is not in the upload folder", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove avatar file: %w", err)
	}
	return nil
}

func extension(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
