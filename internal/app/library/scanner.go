// Package library scans a directory tree for playable audio files.
package library

import (
	"context"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/filter"
	"github.com/osa030/arena/internal/domain/track"
)

// Prober reads the duration and tags of an audio file.
type Prober interface {
	Probe(path string) (track.Metadata, error)
}

// Options controls a scan.
type Options struct {
	ProbeDurations bool // Probe each file; failures fall back to track.UnknownDuration
}

// Scanner walks a directory and builds the list of playable files.
// Concurrent scans run one at a time since they share the filter chain.
type Scanner struct {
	mu     sync.Mutex
	chain  *filter.Chain
	prober Prober
	opts   Options
}

// NewScanner creates a scanner. A nil chain keeps every file with a supported extension.
// The prober may be nil when opts.ProbeDurations is false.
func NewScanner(chain *filter.Chain, prober Prober, opts Options) *Scanner {
	if chain == nil {
		chain = filter.NewChain()
		chain.Add(&filter.ExtensionFilter{})
	}
	if prober == nil {
		opts.ProbeDurations = false
	}
	return &Scanner{
		chain:  chain,
		prober: prober,
		opts:   opts,
	}
}

// Scan recursively lists the audio files under dir in lexical order.
// Unreadable entries are logged and skipped; only a missing or unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]track.AudioFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat music directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("not a directory: %s", dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain.Reset()

	files := make([]track.AudioFile, 0)
	skipped := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == dir {
				return err
			}
			zlog.Warn().Msgf("library: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			zlog.Warn().Msgf("library: skipping %s: %v", path, err)
			return nil
		}

		entry := filter.Entry{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		if result := s.chain.Execute(ctx, entry, filter.StageFile); !result.Accepted {
			zlog.Debug().Msgf("library: %s rejected: %s", path, result.Code)
			skipped++
			return nil
		}

		file := s.probe(track.New(path))
		entry.Duration = file.Duration
		entry.Title = file.Title
		entry.Artist = file.Artist
		if result := s.chain.Execute(ctx, entry, filter.StageProbed); !result.Accepted {
			zlog.Debug().Msgf("library: %s rejected: %s", path, result.Code)
			skipped++
			return nil
		}

		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", dir)
	}

	zlog.Info().Msgf("library: found %d audio files in %s (%d skipped)", len(files), dir, skipped)
	return files, nil
}

func (s *Scanner) probe(file track.AudioFile) track.AudioFile {
	if !s.opts.ProbeDurations {
		return file
	}

	md, err := s.prober.Probe(file.Path)
	file = file.WithTags(md.Title, md.Artist)
	if err != nil {
		zlog.Debug().Msgf("library: duration of %s unknown: %v", file.Path, err)
		return file
	}
	return file.WithDuration(md.Duration)
}

// Shuffle returns a shuffled copy of files; the input is left untouched.
// A nil rng uses the global source.
func Shuffle(files []track.AudioFile, rng *rand.Rand) []track.AudioFile {
	out := make([]track.AudioFile, len(files))
	copy(out, files)

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}
	return out
}
