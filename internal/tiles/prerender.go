package tiles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

// Stats summarizes a pre-render run.
type Stats struct {
	Written int
	Skipped int
	Empty   int
	Failed  int
}

// encodeTile is swapped in tests to simulate encoder failures.
var encodeTile = EncodeWebP

type result struct {
	written, skipped, empty bool
	err                     error
}

// Path returns where tile c is stored under dir.
func Path(dir string, c TileCoordinate) string {
	return filepath.Join(
		dir,
		fmt.Sprintf("%d", c.Z),
		fmt.Sprintf("%d", c.X),
		fmt.Sprintf("%d", c.Y)+".webp",
	)
}

// PreRender renders every tile from zoom 0 to zoomLimit into dir.
// Existing files are kept unless force is set; fully transparent tiles are not written,
// the server answers them with its shared transparent tile. A forced run also removes
// files of tiles that became transparent.
func PreRender(r *Renderer, dir string, zoomLimit, concurrency int, force bool) Stats {
	if concurrency <= 0 {
		concurrency = 1
	}

	var stats Stats
	for z := 0; z <= zoomLimit; z++ {
		n := 1 << z
		log.Debug().Int("zoom", z).Int("count", n*n).Msg("Processing zoom level")

		s := processLevel(r, dir, z, concurrency, force)
		stats.Written += s.Written
		stats.Skipped += s.Skipped
		stats.Empty += s.Empty
		stats.Failed += s.Failed
	}

	return stats
}

func processLevel(r *Renderer, dir string, z, concurrency int, force bool) Stats {
	n := 1 << z
	jobs := make(chan TileCoordinate, concurrency*2)
	results := make(chan result, concurrency*2)

	go func() {
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				jobs <- TileCoordinate{Z: z, X: x, Y: y}
			}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				res := renderToFile(r, dir, c, force)
				if res.err != nil {
					log.Error().
						Err(res.err).
						Int("z", c.Z).Int("x", c.X).Int("y", c.Y).
						Msg("Failed to render tile")
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var stats Stats
	for res := range results {
		switch {
		case res.err != nil:
			stats.Failed++
		case res.skipped:
			stats.Skipped++
		case res.empty:
			stats.Empty++
		case res.written:
			stats.Written++
		}
	}

	return stats
}

func renderToFile(r *Renderer, dir string, c TileCoordinate, force bool) result {
	outPath := Path(dir, c)

	// Check existence if not forcing overwrite
	if !force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return result{skipped: true}
		}
	}

	img, err := r.Render(c.Z, c.X, c.Y)
	if err != nil {
		return result{err: err}
	}
	if IsEmpty(img) {
		// drop the stale painted tile of land that opened since the last run
		if force {
			if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return result{err: err}
			}
		}
		return result{empty: true}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return result{err: err}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return result{err: err}
	}

	if err := encodeTile(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return result{err: err}
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(outPath)
		return result{err: err}
	}

	return result{written: true}
}
