// Package artifact caches the derived files the backend serves for an entry
// checksum: thumbnails, rendered content and extracted text.
package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Well known artifact names.
const (
	ContentHTML   = "content.html"
	ContentText   = "content.txt"
	ThumbnailWebp = "thumbnail.webp"
	ThumbnailWebm = "thumbnail.webm"
)

// Source fetches an artifact when it is not cached.
type Source interface {
	Artifact(ctx context.Context, checksum, name string) ([]byte, error)
}

// InvalidKeyError reports a checksum or name that cannot address a file.
type InvalidKeyError struct {
	Checksum, Name string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid artifact key %q/%q", e.Checksum, e.Name)
}

// Cache is a read-through disk cache. Artifacts are content addressed so
// cached files never go stale.
type Cache struct {
	d      *diskv.Diskv
	src    Source
	logger *slog.Logger
}

// NewCache stores artifacts under dir, fetching misses from src.
func NewCache(dir string, src Source, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      4 * 1024 * 1024,
		}),
		src:    src,
		logger: logger,
	}
}

// Get returns the artifact, from disk when possible.
func (c *Cache) Get(ctx context.Context, checksum, name string) ([]byte, error) {
	key, err := toKey(checksum, name)
	if err != nil {
		return nil, err
	}
	if c.d.Has(key) {
		return c.d.Read(key)
	}
	if c.src == nil {
		return nil, fmt.Errorf("artifact %s not cached", key)
	}
	body, err := c.src.Artifact(ctx, checksum, name)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact %s: %w", key, err)
	}
	if err := c.d.Write(key, body); err != nil {
		// Serving the fetched body still works.
		c.logger.Warn("cache artifact", "key", key, "err", err)
	}
	return body, nil
}

// Text returns the readable text of an entry: content.txt when the backend
// has one, the text of content.html otherwise.
func (c *Cache) Text(ctx context.Context, checksum string) (string, error) {
	body, err := c.Get(ctx, checksum, ContentText)
	if err == nil {
		return strings.TrimSpace(string(body)), nil
	}
	body, herr := c.Get(ctx, checksum, ContentHTML)
	if herr != nil {
		return "", fmt.Errorf("read entry text: %w", herr)
	}
	return Text(string(body)), nil
}

// Keys lists the cached artifacts as checksum/name.
func (c *Cache) Keys(ctx context.Context) []string {
	var keys []string
	for k := range c.d.KeysPrefix("", ctx.Done()) {
		keys = append(keys, k)
	}
	return keys
}

// Evict removes every cached artifact of checksum.
func (c *Cache) Evict(ctx context.Context, checksum string) error {
	var keys []string
	for k := range c.d.KeysPrefix(checksum+"/", ctx.Done()) {
		keys = append(keys, k)
	}
	for _, k := range keys {
		if err := c.d.Erase(k); err != nil {
			return fmt.Errorf("evict %s: %w", k, err)
		}
	}
	return nil
}

func toKey(checksum, name string) (string, error) {
	if !validPart(checksum) || !validPart(name) {
		return "", &InvalidKeyError{Checksum: checksum, Name: name}
	}
	return checksum + "/" + name, nil
}

func validPart(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// keyToPath shards by the first two characters of the checksum.
func keyToPath(key string) *diskv.PathKey {
	checksum, name, _ := strings.Cut(key, "/")
	shard := checksum
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return &diskv.PathKey{
		Path:     []string{shard, checksum},
		FileName: name,
	}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return pk.Path[len(pk.Path)-1] + "/" + pk.FileName
}
