package tokenizer

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/spring-nlp/spring/spring-golib/amr"
	"github.com/spring-nlp/spring/spring-golib/errors"
)

const encodeCacheSize = 4096

// padID is 0 and is never assigned to a real token, so masks derived by
// pad comparison would also be valid for this tokenizer.
const padID = 0

// Whitespace is a diagnostic Tokenizer: whitespace splitting over a vocab
// that grows on demand. It makes no claim about the real AMR encoding;
// it exists so tools and tests can drive the pipeline without a trained
// tokenizer. Safe for concurrent use.
type Whitespace struct {
	mu    sync.Mutex
	vocab map[string]int64
	cache *lru.Cache
}

// NewWhitespace ...
func NewWhitespace() *Whitespace {
	cache, err := lru.New(encodeCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &Whitespace{
		vocab: map[string]int64{},
		cache: cache,
	}
}

// Encode implements Tokenizer
func (w *Whitespace) Encode(sentence string) ([]int64, error) {
	if sentence == "" {
		return nil, errors.Errorf("cannot encode an empty sentence")
	}
	if ids, ok := w.cache.Get(sentence); ok {
		return append([]int64(nil), ids.([]int64)...), nil
	}
	ids := w.encodeTokens(strings.Fields(sentence))
	w.cache.Add(sentence, ids)
	return append([]int64(nil), ids...), nil
}

// Linearize implements Tokenizer: the "linearization" is simply the
// whitespace token stream of the raw graph text.
func (w *Whitespace) Linearize(g *amr.Graph) ([]int64, string, error) {
	fields := strings.Fields(g.Text)
	if len(fields) == 0 {
		return nil, "", errors.Errorf("graph %s has no body", g.ID())
	}
	return w.encodeTokens(fields), strings.Join(fields, " "), nil
}

// PadID implements Tokenizer
func (w *Whitespace) PadID() int64 {
	return padID
}

// VocabSize returns the number of distinct tokens seen so far, pad included
func (w *Whitespace) VocabSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.vocab) + 1
}

func (w *Whitespace) encodeTokens(tokens []string) []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		id, ok := w.vocab[tok]
		if !ok {
			id = int64(len(w.vocab)) + 1 // 0 is reserved for pad
			w.vocab[tok] = id
		}
		ids = append(ids, id)
	}
	return ids
}
