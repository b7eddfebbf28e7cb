package console

import (
	"io"

	zlog "github.com/rs/zerolog/log"
)

// ReadKeys reads r one byte at a time on a new goroutine and delivers the bytes
// on the returned channel, which is closed when r fails or reaches EOF.
// Ctrl-C and Ctrl-D are delivered as 'q' since raw mode disables signals.
func ReadKeys(r io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)

		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n == 1 {
				key := buf[0]
				if key == 0x03 || key == 0x04 {
					key = 'q'
				}
				keys <- key
			}
			if err != nil {
				if err != io.EOF {
					zlog.Debug().Msgf("console: key reader stopped: %v", err)
				}
				return
			}
		}
	}()
	return keys
}
