// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes artifacts into a directory served under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string // e.g. "/images"
}

// NewLocal creates the directory if needed.
func NewLocal(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local store mkdir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save writes data to Dir/name and returns URLPrefix/name. Names with path
// separators are rejected.
func (l *LocalStore) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("local store: invalid name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(l.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("local store write %s: %w", name, err)
	}
	return path.Join(l.URLPrefix, name), nil
}
