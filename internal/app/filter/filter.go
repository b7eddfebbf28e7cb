// Package filter provides the entry filter chain used by the library scanner.
package filter

import (
	"context"
	"time"
)

// Stage tells at which point of a scan a filter runs.
type Stage int

const (
	StageFile   Stage = iota // Before probing, only file system information is known
	StageProbed              // After probing, duration and tags are known
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageFile:
		return "file"
	case StageProbed:
		return "probed"
	default:
		return "unknown"
	}
}

// Entry is a candidate file seen by the scanner.
type Entry struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Duration time.Duration // Zero when unknown
	Title    string
	Artist   string
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "unsupported_extension", "hidden_file"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for scan entry filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter runs at the given stage.
	AppliesTo(stage Stage) bool
	// Check performs the filter check.
	Check(ctx context.Context, e Entry) Result
}

// Resetter is implemented by filters that keep state across a single scan.
type Resetter interface {
	Reset()
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
