package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// BlobStore stores claim file attachments under opaque keys. Removal is
// best-effort everywhere in this system: a failed Remove is logged by the
// caller and never fails the surrounding record mutation.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Remove(ctx context.Context, key string) error
}

// ClaimFileKey builds the canonical key for a claim attachment:
// claims/<claim_id>/<field>/<filename>.
func ClaimFileKey(claimID, field, filename string) string {
	return path.Join("claims", sanitize(claimID), sanitize(field), sanitize(filepath.Base(filename)))
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "..", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, s)
	if s == "" {
		return "_"
	}
	return s
}

// ErrKeyOutsideRoot is returned when a key escapes the store root.
var ErrKeyOutsideRoot = fmt.Errorf("blob key resolves outside store root")
