// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore holds ID photos. Objects are addressed by a flat name and
// exposed through a public URL.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) error
	PublicURL(name string) (string, error)
	Delete(ctx context.Context, name string) error
	// ObjectName maps a public URL produced by this store back to the
	// object name. ok is false for foreign URLs.
	ObjectName(publicURL string) (name string, ok bool)
}

// NewObjectName builds a collision-resistant object name:
// <unix millis>-<8 random hex>-<sanitized original file name>
func NewObjectName(original string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), random, sanitizeName(original))
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "photo"
	}
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	return out
}
