package phrases

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Shuffler produces randomized phrase orderings.
type Shuffler struct {
	rnd *rand.Rand
}

// NewShuffler returns a Shuffler seeded with the current time.
func NewShuffler() *Shuffler {
	return NewSeededShuffler(time.Now().UnixNano())
}

// NewSeededShuffler returns a deterministic Shuffler.
func NewSeededShuffler(seed int64) *Shuffler {
	return &Shuffler{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a shuffled copy of list.
func (s *Shuffler) Shuffle(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	s.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Provider returns a freshly shuffled phrase sequence on every call. Files in
// dir named <difficulty>.json or <difficulty>.txt replace the built-in
// datasets.
type Provider struct {
	dir      string
	shuffler *Shuffler
	cache    map[Difficulty][]string
}

// NewProvider creates a provider. An empty dir uses only embedded datasets; a
// nil shuffler keeps dataset order.
func NewProvider(dir string, shuffler *Shuffler) *Provider {
	return &Provider{
		dir:      dir,
		shuffler: shuffler,
		cache:    map[Difficulty][]string{},
	}
}

// Phrases implements the game's phrase source.
func (p *Provider) Phrases(d Difficulty) ([]string, error) {
	list, err := p.base(d)
	if err != nil {
		return nil, err
	}
	if p.shuffler == nil {
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	}
	return p.shuffler.Shuffle(list), nil
}

// Source reports where phrases for d are loaded from.
func (p *Provider) Source(d Difficulty) string {
	if path, ok := p.overridePath(d); ok {
		return path
	}
	return "built-in " + string(d) + " dataset"
}

func (p *Provider) base(d Difficulty) ([]string, error) {
	if list, ok := p.cache[d]; ok {
		return list, nil
	}
	var (
		list []string
		err  error
	)
	if path, ok := p.overridePath(d); ok {
		list, err = LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load phrases from %s: %w", path, err)
		}
	} else {
		list, err = Embedded(d)
		if err != nil {
			return nil, err
		}
	}
	p.cache[d] = list
	return list, nil
}

func (p *Provider) overridePath(d Difficulty) (string, bool) {
	if p.dir == "" {
		return "", false
	}
	for _, ext := range []string{".json", ".txt"} {
		path := filepath.Join(p.dir, string(d)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		} else if !errors.Is(err, fs.ErrNotExist) {
			// Unreadable entries are reported by LoadFile.
			return path, true
		}
	}
	return "", false
}
