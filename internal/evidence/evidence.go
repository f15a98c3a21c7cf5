// Package evidence persists screenshots captured during a check run.
// Screenshots always land in a local directory; they can additionally be
// mirrored to an S3 bucket.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kuitang/langcheck/internal/obs"
	"github.com/kuitang/langcheck/internal/s3client"
)

const pngContentType = "image/png"

// Store saves one screenshot and returns where it was written.
type Store interface {
	Save(ctx context.Context, name string, png []byte) (string, error)
}

// DirStore writes screenshots into a local directory, overwriting files of
// the same name.
type DirStore struct {
	Dir string
}

// NewDirStore returns a store rooted at dir. The directory is created lazily.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Dir: dir}
}

// Save writes png to Dir/name.
func (s *DirStore) Save(ctx context.Context, name string, png []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("evidence: create %s: %w", s.Dir, err)
	}
	target := filepath.Join(s.Dir, name)
	if err := os.WriteFile(target, png, 0o644); err != nil {
		return "", fmt.Errorf("evidence: write %s: %w", target, err)
	}
	return target, nil
}

// BucketStore uploads screenshots to <prefix>/<run_id>/<name>.
type BucketStore struct {
	client *s3client.Client
	prefix string
}

// NewBucketStore returns a store that mirrors screenshots to client's bucket.
func NewBucketStore(client *s3client.Client, prefix string) *BucketStore {
	return &BucketStore{client: client, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a screenshot of the run carried by ctx.
func (s *BucketStore) Key(ctx context.Context, name string) string {
	return path.Join(s.prefix, obs.RunIDFromContext(ctx), name)
}

// Save uploads png and returns its s3:// URI.
func (s *BucketStore) Save(ctx context.Context, name string, png []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	key := s.Key(ctx, name)
	if err := s.client.PutObject(ctx, key, png, pngContentType); err != nil {
		return "", fmt.Errorf("evidence: upload %s: %w", name, err)
	}
	return s.client.URI(key), nil
}

// Multi saves to every store in order and reports the first store's location.
// A failure in the first store is fatal; later stores are mirrors and only
// logged.
type Multi []Store

// Save implements Store.
func (m Multi) Save(ctx context.Context, name string, png []byte) (string, error) {
	if len(m) == 0 {
		return "", errors.New("evidence: no stores configured")
	}
	primary, err := m[0].Save(ctx, name, png)
	if err != nil {
		return "", err
	}
	for _, mirror := range m[1:] {
		location, err := mirror.Save(ctx, name, png)
		if err != nil {
			obs.From(ctx).With("pkg", "evidence").Warn("evidence_mirror_failed", "name", name, "error", err)
			continue
		}
		obs.From(ctx).With("pkg", "evidence").Debug("evidence_mirrored", "name", name, "location", location)
	}
	return primary, nil
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("evidence: invalid screenshot name %q", name)
	}
	return nil
}
