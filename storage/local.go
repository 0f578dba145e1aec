// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// UploadsPath is the URL prefix under which LocalStore objects are served
const UploadsPath = "/uploads/"

// LocalStore keeps photos in a directory served by this process.
type LocalStore struct {
	dir        string
	publicBase string
}

func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, publicBase: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir returns the directory holding the objects
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *LocalStore) Upload(ctx context.Context, name, contentType string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create object: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("failed to write object: %w", err)
	}
	return f.Close()
}

func (s *LocalStore) PublicURL(name string) (string, error) {
	if _, err := s.path(name); err != nil {
		return "", err
	}
	return s.publicBase + UploadsPath + url.PathEscape(name), nil
}

// Delete removes the object; a missing object is not an error
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *LocalStore) ObjectName(publicURL string) (string, bool) {
	prefix := s.publicBase + UploadsPath
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	name, err := url.PathUnescape(strings.TrimPrefix(publicURL, prefix))
	if err != nil {
		return "", false
	}
	if _, err := s.path(name); err != nil {
		return "", false
	}
	return name, true
}
