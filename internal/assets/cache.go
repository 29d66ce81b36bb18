package assets

import (
	"io/fs"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Cache loads texture sets once and shares the result between every
// caller asking for the same paths. A failed load stays failed until
// Forget is called.
type Cache struct {
	fsys fs.FS
	log  logrus.FieldLogger

	mu      sync.Mutex
	entries map[string]*Future[[]*Texture]
}

// NewCache creates a cache reading from fsys.
func NewCache(fsys fs.FS, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{
		fsys:    fsys,
		log:     log,
		entries: make(map[string]*Future[[]*Texture]),
	}
}

func cacheKey(paths []string) string {
	return strings.Join(paths, "\x00")
}

// Load returns the future for a texture set, starting the load in a
// goroutine on first request. Textures are returned in path order.
func (c *Cache) Load(paths ...string) *Future[[]*Texture] {
	k := cacheKey(paths)

	c.mu.Lock()
	if f, ok := c.entries[k]; ok {
		c.mu.Unlock()
		return f
	}
	f := NewFuture[[]*Texture]()
	c.entries[k] = f
	c.mu.Unlock()

	go c.load(f, append([]string(nil), paths...))
	return f
}

func (c *Cache) load(f *Future[[]*Texture], paths []string) {
	textures := make([]*Texture, 0, len(paths))
	for _, p := range paths {
		tex, err := Decode(c.fsys, p)
		if err != nil {
			c.log.WithError(err).WithField("path", p).Error("texture load failed")
			f.Reject(err)
			return
		}
		w, h := tex.Size()
		c.log.WithFields(logrus.Fields{"path": p, "w": w, "h": h}).Debug("texture loaded")
		textures = append(textures, tex)
	}
	f.Resolve(textures)
}

// Forget drops a cached texture set so the next Load retries it.
func (c *Cache) Forget(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(paths))
}
