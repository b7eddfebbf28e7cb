package audio

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/domain/track"
)

// Prober reads durations with the beep decoders and titles with dhowden/tag.
// It does not touch the speaker and is safe to use from any goroutine.
type Prober struct{}

// NewProber creates a new prober.
func NewProber() *Prober {
	return &Prober{}
}

// Probe returns the file's metadata. Tags are best-effort; an error means the
// duration is unknown, but any tags found are still returned.
func (p *Prober) Probe(path string) (track.Metadata, error) {
	var md track.Metadata
	md.Title, md.Artist = readTags(path)

	f, stream, format, err := openStream(path)
	if err != nil {
		return md, err
	}
	defer f.Close()
	defer stream.Close()

	n := stream.Len()
	if n <= 0 {
		return md, errors.Newf("stream has no length: %s", path)
	}
	md.Duration = format.SampleRate.D(n)
	return md, nil
}

func readTags(path string) (title, artist string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		zlog.Debug().Msgf("audio: no tags in %s: %v", path, err)
		return "", ""
	}
	return m.Title(), m.Artist()
}
