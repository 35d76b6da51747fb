package tokenpool

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool() *Pool {
	return New(zerolog.Nop())
}

func TestSelect_PrefersHighestRemaining(t *testing.T) {
	p := newTestPool()
	p.Add("A")
	p.Add("B")
	p.UpdateRemaining("A", 5)
	p.UpdateRemaining("B", 20)

	token, err := p.Select()
	require.NoError(t, err)
	assert.Equal(t, "B", token)

	p.UpdateRemaining("B", 0)

	token, err = p.Select()
	require.NoError(t, err)
	assert.Equal(t, "A", token)
}

func TestSelect_TieBrokenLexically(t *testing.T) {
	p := newTestPool()
	p.Add("zeta")
	p.Add("alpha")
	p.Add("mid")

	for i := 0; i < 3; i++ {
		token, err := p.Select()
		require.NoError(t, err)
		assert.Equal(t, "alpha", token, "selection must be deterministic under equal quotas")
	}
}

func TestSelect_EmptyPool(t *testing.T) {
	p := newTestPool()

	_, err := p.Select()
	assert.True(t, errors.Is(err, ErrEmptyPool))
}

func TestAdd_IgnoresBlankAndDuplicates(t *testing.T) {
	p := newTestPool()
	p.Add("")
	p.Add("   ")
	p.Add("tok")
	p.UpdateRemaining("tok", 3)
	p.Add("tok")

	snap := p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 3, snap[0].Remaining, "re-adding must not reset the estimate")
}

func TestUpdateRemaining_UnknownTokenIgnored(t *testing.T) {
	p := newTestPool()
	p.Add("known")
	p.UpdateRemaining("unknown", 99)

	snap := p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, DefaultRemaining, snap[0].Remaining)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "three tokens", input: "a\nb\nc\n", want: 3},
		{name: "blank lines skipped", input: "\n a \n\n\tb\n", want: 2},
		{name: "empty source", input: "", wantErr: ErrEmptySource},
		{name: "only blanks", input: "\n  \n", wantErr: ErrEmptySource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPool()
			n, err := p.Load(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, p.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Equal(t, tt.want, p.Len())
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idlemmo-tokens.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o600))

	p := newTestPool()
	n, err := p.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = p.LoadFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	p := newTestPool()
	for _, tok := range []string{"a", "b", "c", "d"} {
		p.Add(tok)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := p.Select()
			if err != nil {
				t.Errorf("Select() error = %v", err)
				return
			}
			p.UpdateRemaining(tok, i%7)
			_ = p.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, p.Len())
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("secret-token")
	assert.Len(t, fp, 8)
	assert.NotContains(t, fp, "secret")
	assert.Equal(t, fp, Fingerprint("secret-token"))
	assert.NotEqual(t, fp, Fingerprint("other-token"))
}
