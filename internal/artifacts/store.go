// SPDX-License-Identifier: MIT
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned for keys that hold no artifact
var ErrNotFound = errors.New("artifact not found")

// Store keeps composed smart SVGs
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// Type names the backend as stored with each artifact record
	Type() string
}

// NewKey returns a fresh storage key for an artifact of projectID
func NewKey(projectID string) string {
	return projectID + "/" + uuid.NewString() + ".svg"
}

// checkKey rejects keys that could escape the storage root
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid artifact key %q", key)
		}
	}
	return nil
}
