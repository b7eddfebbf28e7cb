package filter

import (
	"context"
	"path/filepath"
	"strings"
)

// HiddenFileFilter skips dot files such as "._song.mp3" left behind by macOS.
type HiddenFileFilter struct{}

func (f *HiddenFileFilter) Name() string {
	return "hidden_file_filter"
}

func (f *HiddenFileFilter) Description() string {
	return "Skips files whose name starts with a dot"
}

func (f *HiddenFileFilter) ReturnCodes() []string {
	return []string{"hidden_file"}
}

func (f *HiddenFileFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *HiddenFileFilter) AppliesTo(stage Stage) bool {
	return stage == StageFile
}

func (f *HiddenFileFilter) Check(ctx context.Context, e Entry) Result {
	if strings.HasPrefix(filepath.Base(e.Path), ".") {
		return Reject("hidden_file")
	}
	return Accept()
}

func init() {
	Register("hidden_file_filter", func() Filter {
		return &HiddenFileFilter{}
	})
}
