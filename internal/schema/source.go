package schema

import (
	"os"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"
)

// Source supplies the schema for one analysis call.
type Source interface {
	Schema() (*Schema, error)
}

// Static returns a source that always yields s.
func Static(s *Schema) Source {
	return staticSource{s}
}

type staticSource struct {
	s *Schema
}

func (src staticSource) Schema() (*Schema, error) {
	if src.s == nil {
		return nil, ErrNoTables
	}
	return src.s, nil
}

// FileSource loads schema documents from disk. Decoded schemas are cached by
// path and reloaded when the file's modification time or size changes. A
// FileSource is safe for concurrent use.
type FileSource struct {
	path string

	mu    sync.Mutex
	cache *lru.Cache
	stat  func(string) (os.FileInfo, error)
}

type cachedSchema struct {
	modTime time.Time
	size    int64
	schema  *Schema
}

const fileCacheSize = 16

// NewFileSource returns a source reading the document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:  path,
		cache: lru.New(fileCacheSize),
		stat:  os.Stat,
	}
}

// Path is the document the source reads.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Schema() (*Schema, error) {
	return s.Load(s.path)
}

// Load returns the schema at path, decoding it only if the cached copy is
// stale.
func (s *FileSource) Load(path string) (*Schema, error) {
	info, err := s.stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat schema")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(path); ok {
		c := v.(*cachedSchema)
		if c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
			return c.schema, nil
		}
		s.cache.Remove(path)
	}

	sch, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.cache.Add(path, &cachedSchema{
		modTime: info.ModTime(),
		size:    info.Size(),
		schema:  sch,
	})
	return sch, nil
}

// Cached reports how many decoded schemas are held.
func (s *FileSource) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
