// Package itemmatch resolves loosely typed item names to known item names
// using Jaro-Winkler similarity. The known names live in a plain text file,
// one per line, which can be rebuilt from the item search endpoint.
package itemmatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Sternrassler/idlemmo-client/pkg/api"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/Sternrassler/idlemmo-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/xrash/smetrics"
)

// DefaultFile is the item list looked up in the working directory.
const DefaultFile = "items.txt"

// Jaro-Winkler parameters: boost above 0.7 similarity, common prefix up to 4.
const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// Match is a candidate with its similarity to the target, in [0, 1].
type Match struct {
	Name  string
	Score float64
}

// Similarity scores a against b. Comparison ignores case.
func Similarity(a, b string) float64 {
	return smetrics.JaroWinkler(strings.ToLower(a), strings.ToLower(b), boostThreshold, prefixSize)
}

// BestMatch returns the candidate most similar to target. The first
// candidate wins ties. ok is false when candidates is empty.
func BestMatch(target string, candidates []string) (best string, ok bool) {
	max := -1.0
	for _, c := range candidates {
		if score := Similarity(target, c); score > max {
			max, best, ok = score, c, true
		}
	}
	return best, ok
}

// Searcher pages through the item search endpoint. *api.Service satisfies it.
type Searcher interface {
	ItemSearchPages(opts api.ItemSearch) pagination.PageFunc[[]model.Item]
}

// Matcher holds the known item names. It is safe for concurrent use.
type Matcher struct {
	mu     sync.RWMutex
	names  []string
	logger zerolog.Logger
}

// New creates a matcher over names. Blank names are dropped.
func New(names []string, logger zerolog.Logger) *Matcher {
	m := &Matcher{logger: logger}
	m.replace(names)
	return m
}

// Load reads the names in path. A missing file yields an empty matcher and
// an error the caller may log.
func Load(path string, logger zerolog.Logger) (*Matcher, error) {
	m := New(nil, logger)
	f, err := os.Open(path)
	if err != nil {
		return m, fmt.Errorf("open item list: %w", err)
	}
	defer f.Close()

	names, err := readLines(f)
	if err != nil {
		return m, fmt.Errorf("read %s: %w", path, err)
	}
	m.replace(names)
	return m, nil
}

func readLines(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		names = append(names, scanner.Text())
	}
	return names, scanner.Err()
}

func (m *Matcher) replace(names []string) {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	m.mu.Lock()
	m.names = kept
	m.mu.Unlock()
}

// Len returns the number of known names.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

// Names returns a copy of the known names.
func (m *Matcher) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.names...)
}

// Best returns the known name most similar to target.
func (m *Matcher) Best(target string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return BestMatch(target, m.names)
}

// Top returns the n most similar names, best first.
func (m *Matcher) Top(target string, n int) []Match {
	m.mu.RLock()
	matches := make([]Match, 0, len(m.names))
	for _, name := range m.names {
		matches = append(matches, Match{Name: name, Score: Similarity(target, name)})
	}
	m.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if n >= 0 && n < len(matches) {
		matches = matches[:n]
	}
	return matches
}

// Save writes the known names to path, one per line.
func (m *Matcher) Save(path string) error {
	names := m.Names()
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write item list: %w", err)
	}
	m.logger.Info().Int("items", len(names)).Str("path", path).Msg("Item list saved")
	return nil
}

// Refresh replaces the known names with every item the search endpoint
// returns for the given types (all types when none are given). Names are
// deduplicated and sorted. On error the current names are kept.
func (m *Matcher) Refresh(ctx context.Context, s Searcher, types ...model.ItemType) (int, error) {
	if len(types) == 0 {
		types = model.ItemTypes
	}

	seen := make(map[string]struct{})
	for _, t := range types {
		fetcher := pagination.NewBatchFetcher[[]model.Item](s.ItemSearchPages(api.ItemSearch{Type: t}), pagination.DefaultConfig())
		pages, err := fetcher.FetchAllPages(ctx)
		if err != nil {
			return 0, fmt.Errorf("fetch %s items: %w", t, err)
		}
		for _, page := range pages {
			for _, it := range page {
				seen[it.Name] = struct{}{}
			}
		}
		m.logger.Debug().Str("type", string(t)).Int("pages", len(pages)).Msg("Fetched item type")
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	m.replace(names)

	m.logger.Info().Int("items", m.Len()).Msg("Item list refreshed")
	return m.Len(), nil
}
