// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps photos in a Supabase Storage bucket.
type SupabaseStore struct {
	baseURL string
	bucket  string
	client  *storage_go.Client
}

// NewSupabaseStore connects to the storage API of the project at baseURL
// with a service key.
func NewSupabaseStore(baseURL, key, bucket string) *SupabaseStore {
	baseURL = strings.TrimRight(baseURL, "/")
	return &SupabaseStore{
		baseURL: baseURL,
		bucket:  bucket,
		client:  storage_go.NewClient(baseURL+"/storage/v1", key, map[string]string{"apikey": key}),
	}
}

// Upload stores data under name. Existing objects are never overwritten.
func (s *SupabaseStore) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	upsert := false
	cacheControl := "3600"
	_, err := s.client.UploadFile(s.bucket, name, bytes.NewReader(data), storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload of %s failed: %w", name, err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(name string) (string, error) {
	if s.baseURL == "" || name == "" {
		return "", errors.New("public URL unavailable")
	}
	return s.client.GetPublicUrl(s.bucket, name).SignedURL, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.client.RemoveFile(s.bucket, []string{name}); err != nil {
		return fmt.Errorf("supabase delete of %s failed: %w", name, err)
	}
	return nil
}

// ObjectName extracts the object name following "<bucket>/" in the URL
func (s *SupabaseStore) ObjectName(publicURL string) (string, bool) {
	marker := "/" + s.bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", false
	}
	name, err := url.PathUnescape(publicURL[idx+len(marker):])
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}
