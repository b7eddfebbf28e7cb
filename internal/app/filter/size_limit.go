package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// SizeLimitConfig represents the configuration for SizeLimitFilter.
type SizeLimitConfig struct {
	MinBytes int64 `yaml:"min_bytes" mapstructure:"min_bytes" default:"1024" validate:"gte=0"`
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=0"`
}

// SizeLimitFilter skips files that are too small to hold audio, or too large.
type SizeLimitFilter struct {
	config *SizeLimitConfig
}

// NewSizeLimitFilter creates a new size limit filter.
func NewSizeLimitFilter() *SizeLimitFilter {
	return &SizeLimitFilter{}
}

func (f *SizeLimitFilter) Name() string {
	return "size_limit_filter"
}

func (f *SizeLimitFilter) Description() string {
	return "Skips files outside the configured size range"
}

func (f *SizeLimitFilter) ReturnCodes() []string {
	return []string{"size_limit_exceeded"}
}

func (f *SizeLimitFilter) ValidateConfig(settings map[string]any) error {
	var config SizeLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	// max_bytes 0 means no upper limit
	if config.MaxBytes > 0 && config.MinBytes > config.MaxBytes {
		return errors.New("min_bytes cannot be greater than max_bytes")
	}
	f.config = &config
	zlog.Debug().Msgf("size limit filter config: %+v", config)
	return nil
}

func (f *SizeLimitFilter) AppliesTo(stage Stage) bool {
	return stage == StageFile
}

func (f *SizeLimitFilter) Check(ctx context.Context, e Entry) Result {
	if f.config == nil {
		return Accept()
	}

	if e.Size < f.config.MinBytes {
		return Reject("size_limit_exceeded")
	}
	if f.config.MaxBytes > 0 && e.Size > f.config.MaxBytes {
		return Reject("size_limit_exceeded")
	}
	return Accept()
}

func init() {
	Register("size_limit_filter", func() Filter {
		return &SizeLimitFilter{}
	})
}
