package filter

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),              // "(Any Remaster text)"
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),              // "[Any Remaster text]"
	}
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`),        // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),           // "(Radio Edit)"
		regexp.MustCompile(`\s*\(live\)`),              // "(Live)"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`),     // "- Radio Edit"
		regexp.MustCompile(`\s*-?\s*single\s+version`), // "- Single Version"
	}
	spaces = regexp.MustCompile(`\s+`)
)

// DuplicateTrackFilter skips a file when a track with the same normalized
// title and artist was already kept during the current scan.
// Remasters and edits of the same song count as duplicates, covers do not.
type DuplicateTrackFilter struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter() *DuplicateTrackFilter {
	return &DuplicateTrackFilter{seen: make(map[string]bool)}
}

func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

func (f *DuplicateTrackFilter) Description() string {
	return "Skips remasters and re-edits of a track already in the library; covers are kept"
}

func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{"duplicate_track"}
}

func (f *DuplicateTrackFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *DuplicateTrackFilter) AppliesTo(stage Stage) bool {
	return stage == StageProbed
}

func (f *DuplicateTrackFilter) Check(ctx context.Context, e Entry) Result {
	key := trackKey(e)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return Reject("duplicate_track")
	}
	f.seen[key] = true
	return Accept()
}

// Reset forgets the tracks seen so far.
func (f *DuplicateTrackFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = make(map[string]bool)
}

// trackKey identifies a song by normalized title and artist.
// Untagged files fall back to their file name and directory.
func trackKey(e Entry) string {
	title := e.Title
	artist := strings.ToLower(strings.TrimSpace(e.Artist))
	if title == "" {
		name := filepath.Base(e.Path)
		title = strings.TrimSuffix(name, filepath.Ext(name))
		if artist == "" {
			artist = strings.ToLower(filepath.Dir(e.Path))
		}
	}
	return normalizeTrackName(title) + "\x00" + artist
}

// normalizeTrackName removes remaster information and version details.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = spaces.ReplaceAllString(normalized, " ")

	// Remove trailing dashes
	return strings.TrimRight(normalized, " -")
}

func init() {
	Register("duplicate_track_filter", func() Filter {
		return NewDuplicateTrackFilter()
	})
}
