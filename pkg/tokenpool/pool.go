// Package tokenpool keeps a set of IdleMMO API tokens together with an
// estimate of the requests each one has left, and hands out the token most
// likely to succeed next.
package tokenpool

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultRemaining is the quota estimate assigned to a newly registered token.
const DefaultRemaining = 20

var (
	// ErrEmptyPool is returned by Select when no token has been registered.
	ErrEmptyPool = errors.New("token pool is empty")

	// ErrEmptySource is returned by Load when the source holds no usable token.
	ErrEmptySource = errors.New("token source is empty")
)

var tokenRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "idlemmo_token_remaining",
	Help: "Estimated remaining requests per API token (labelled by fingerprint)",
}, []string{"token"})

// Entry is a single credential with its estimated remaining quota.
type Entry struct {
	Token     string
	Remaining int
}

// Pool is a max-priority set of tokens ordered by estimated remaining quota,
// then by token string. It is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	entries []*Entry
	logger  zerolog.Logger
}

// New creates an empty pool.
func New(logger zerolog.Logger) *Pool {
	return &Pool{logger: logger}
}

// Add registers a token with DefaultRemaining. Blank or already known tokens
// are ignored.
func (p *Pool) Add(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.find(token) != nil {
		return
	}
	p.entries = append(p.entries, &Entry{Token: token, Remaining: DefaultRemaining})
	p.sortLocked()
	tokenRemaining.WithLabelValues(Fingerprint(token)).Set(DefaultRemaining)
}

// Load registers one token per line from r. Blank lines are skipped.
// It returns the number of tokens read, or ErrEmptySource when none were found.
func (p *Pool) Load(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.Add(line)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("read tokens: %w", err)
	}
	if count == 0 {
		return 0, ErrEmptySource
	}

	p.logger.Info().Int("tokens", count).Msg("Loaded API tokens")
	return count, nil
}

// LoadFile opens path and passes it to Load.
func (p *Pool) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	n, err := p.Load(f)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Select returns the token with the highest estimated remaining quota.
// Ties are broken by lexical order of the token string.
func (p *Pool) Select() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return "", ErrEmptyPool
	}
	// entries stay sorted after every mutation, so the head is the pick
	return p.entries[0].Token, nil
}

// UpdateRemaining overwrites the quota estimate for token. Unknown tokens are
// ignored.
func (p *Pool) UpdateRemaining(token string, remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.find(token)
	if entry == nil {
		p.logger.Debug().Str("token", Fingerprint(token)).Msg("Quota update for unknown token ignored")
		return
	}
	entry.Remaining = remaining
	p.sortLocked()
	tokenRemaining.WithLabelValues(Fingerprint(token)).Set(float64(remaining))
}

// Len returns the number of registered tokens.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Snapshot returns a copy of all entries in selection order.
func (p *Pool) Snapshot() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = *e
	}
	return out
}

func (p *Pool) find(token string) *Entry {
	for _, e := range p.entries {
		if e.Token == token {
			return e
		}
	}
	return nil
}

func (p *Pool) sortLocked() {
	sort.SliceStable(p.entries, func(i, j int) bool {
		a, b := p.entries[i], p.entries[j]
		if a.Remaining != b.Remaining {
			return a.Remaining > b.Remaining
		}
		return a.Token < b.Token
	})
}

// Fingerprint returns a short, non-reversible identifier for a token that is
// safe to log and to use as a metric label.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:4])
}
