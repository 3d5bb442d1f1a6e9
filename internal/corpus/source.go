package corpus

import (
	"sync"

	"github.com/quotable-io/quotable/internal/models"
)

// Source holds the active corpus and swaps it atomically on reload. Reads
// always see a complete corpus, never a partially applied one.
type Source struct {
	mu     sync.RWMutex
	path   string
	quotes []models.QuoteInput
}

// NewSource returns a source serving the built-in seed corpus.
func NewSource() *Source {
	return &Source{quotes: Seed()}
}

// NewStaticSource returns a source serving a fixed set of quotes.
func NewStaticSource(quotes []models.QuoteInput) *Source {
	return &Source{quotes: quotes}
}

// NewFileSource returns a source backed by a YAML corpus file. Reload
// re-reads the same path.
func NewFileSource(path string) (*Source, error) {
	quotes, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Source{path: path, quotes: quotes}, nil
}

// Quotes returns a copy of the active corpus.
func (s *Source) Quotes() []models.QuoteInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.QuoteInput, len(s.quotes))
	copy(out, s.quotes)
	return out
}

// Len returns the number of quotes in the active corpus.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

// Path returns the backing file path, empty for the built-in corpus.
func (s *Source) Path() string {
	return s.path
}

// Reload re-reads the backing file and swaps in its quotes, returning the
// new corpus size. On error the previous corpus stays active. For the
// built-in corpus Reload is a no-op.
func (s *Source) Reload() (int, error) {
	if s.path == "" {
		return s.Len(), nil
	}

	quotes, err := LoadFile(s.path)
	if err != nil {
		return s.Len(), err
	}

	s.mu.Lock()
	s.quotes = quotes
	s.mu.Unlock()
	return len(quotes), nil
}
