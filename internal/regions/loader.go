package regions

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/woozymasta/worldtile/assets"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Source returns the raw bytes of an open-states document.
type Source func() ([]byte, error)

// FileSource reads the document from disk.
func FileSource(path string) Source {
	return func() ([]byte, error) {
		return os.ReadFile(path)
	}
}

// EmbeddedSource returns the document bundled into the binary.
func EmbeddedSource() Source {
	return func() ([]byte, error) {
		return assets.OpenStates, nil
	}
}

// Loader reads and parses the open-states document once and caches the result
// for the life of the process. Concurrent first callers share a single read.
// A failed read is not cached, so a later call tries again.
type Loader struct {
	source Source
	name   string
	group  singleflight.Group
	cached atomic.Pointer[Collection]
}

// NewLoader creates a loader over src. The name only appears in logs.
func NewLoader(name string, src Source) *Loader {
	return &Loader{source: src, name: name}
}

// Load returns the cached collection, reading it on first use.
func (l *Loader) Load() (*Collection, error) {
	if c := l.cached.Load(); c != nil {
		return c, nil
	}

	v, err, _ := l.group.Do("open-states", func() (interface{}, error) {
		// a caller may have finished the read between our check and Do
		if c := l.cached.Load(); c != nil {
			return c, nil
		}

		start := time.Now()
		data, err := l.source()
		if err != nil {
			return nil, fmt.Errorf("read open states %s: %w", l.name, err)
		}

		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse open states %s: %w", l.name, err)
		}

		l.cached.Store(c)

		log.Info().
			Str("source", l.name).
			Int("features", len(c.Features)).
			Int("skipped", c.Skipped).
			Int("dropped_parts", c.DroppedParts).
			Dur("took", time.Since(start)).
			Msg("Open states loaded")

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Collection), nil
}

var defaultLoader = NewLoader("embedded", EmbeddedSource())

// LoadOpenStates returns the bundled open-states collection, read once per process.
func LoadOpenStates() (*Collection, error) {
	return defaultLoader.Load()
}
