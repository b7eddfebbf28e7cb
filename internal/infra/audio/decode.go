// Package audio provides the beep-backed audio output device, decoders and probes.
package audio

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/osa030/arena/internal/domain/track"
)

// ErrUnsupportedFormat is returned for extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// decode picks a decoder from the file extension.
// The returned streamer owns f; closing it releases the file.
func decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	ext := track.Extension(f.Name())

	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch ext {
	case "mp3":
		stream, format, err = mp3.Decode(f)
	case "flac":
		stream, format, err = flac.Decode(f)
	case "wav":
		stream, format, err = wav.Decode(f)
	case "ogg":
		stream, format, err = vorbis.Decode(f)
	default:
		// m4a is listed by the scanner but beep has no AAC decoder.
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}
	if err != nil {
		return nil, beep.Format{}, errors.Wrapf(err, "failed to decode %s", f.Name())
	}
	return stream, format, nil
}

// openStream opens path and decodes it.
func openStream(path string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, beep.Format{}, errors.Wrap(err, "failed to open audio file")
	}

	stream, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, beep.Format{}, err
	}
	return f, stream, format, nil
}
