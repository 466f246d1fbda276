package database

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RecordIDGenerator produces collision-free attendance record ids. The
// id combines the name slug, the event's unix milliseconds, and a
// process-wide monotonic counter, so two accepts of the same name in the
// same millisecond still get distinct ids.
type RecordIDGenerator struct {
	mu      sync.Mutex
	counter uint64
}

// Next returns a fresh id for the given name and timestamp.
func (g *RecordIDGenerator) Next(name string, ts time.Time) string {
	g.mu.Lock()
	g.counter++
	n := g.counter
	g.mu.Unlock()

	return fmt.Sprintf("%s-%d-%d", slugify(name), ts.UnixMilli(), n)
}

// slugify lowercases a name, strips diacritics, and collapses everything
// that is not a letter or digit into single dashes.
func slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)
	name = strings.ToLower(name)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "record"
	}
	return s
}
