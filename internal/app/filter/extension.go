package filter

import (
	"context"

	"github.com/osa030/arena/internal/domain/track"
)

// ExtensionFilter keeps files whose extension is in track.SupportedExtensions.
// It is always the first filter of a chain built from config.
type ExtensionFilter struct{}

func (f *ExtensionFilter) Name() string {
	return "extension_filter"
}

func (f *ExtensionFilter) Description() string {
	return "Keeps mp3, flac, wav, ogg and m4a files (case-insensitive)"
}

func (f *ExtensionFilter) ReturnCodes() []string {
	return []string{"unsupported_extension"}
}

func (f *ExtensionFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *ExtensionFilter) AppliesTo(stage Stage) bool {
	return stage == StageFile
}

func (f *ExtensionFilter) Check(ctx context.Context, e Entry) Result {
	if !track.IsSupported(e.Path) {
		return Reject("unsupported_extension")
	}
	return Accept()
}

func init() {
	Register("extension_filter", func() Filter {
		return &ExtensionFilter{}
	})
}
