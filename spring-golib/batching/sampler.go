package batching

import (
	"math/rand"
	"sort"

	"github.com/spring-nlp/spring/spring-golib/errors"
)

// Sampler partitions dataset indices into groups whose padded token cost
// stays within a budget. Cost of a group is longest bucketing length in
// the group times the group size, i.e. the tensor area after padding.
//
// Two length arrays are indexed: primaryLens (source-sentence lengths)
// and bucketingLens (linearized-graph lengths, which drive the budget).
type Sampler struct {
	primaryLens   []int
	bucketingLens []int
	budget        int
	shuffle       bool
	sort          bool
	rng           *rand.Rand
}

// SamplerOpts are the optional knobs of NewSampler
type SamplerOpts struct {
	// Shuffle permutes the indices before grouping
	Shuffle bool
	// Sort orders indices by descending length before grouping, so that
	// similarly sized examples land together and padding waste stays low
	Sort bool
	// Rng, when set, makes shuffling deterministic; nil uses the shared
	// process-wide source
	Rng *rand.Rand
}

// NewSampler validates the configuration. The two length arrays are
// parallel and must not be mutated while any iteration is live.
func NewSampler(primaryLens, bucketingLens []int, budget int, opts SamplerOpts) (*Sampler, error) {
	if budget <= 0 {
		return nil, errors.Errorf("token budget must be positive, got %d", budget)
	}
	if len(primaryLens) != len(bucketingLens) {
		return nil, errors.Errorf("length arrays disagree: %d primary vs %d bucketing", len(primaryLens), len(bucketingLens))
	}
	return &Sampler{
		primaryLens:   primaryLens,
		bucketingLens: bucketingLens,
		budget:        budget,
		shuffle:       opts.Shuffle,
		sort:          opts.Sort,
		rng:           opts.Rng,
	}, nil
}

// Iter starts a fresh pass over the dataset. Each call builds its own
// ordering and running state, so concurrent passes never share batches.
func (s *Sampler) Iter() *GroupIter {
	ids := make([]int, len(s.bucketingLens))
	for i := range ids {
		ids[i] = i
	}

	if s.shuffle {
		shuffleFn := rand.Shuffle
		if s.rng != nil {
			shuffleFn = s.rng.Shuffle
		}
		shuffleFn(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}

	if s.sort {
		// Historical quirk, kept on purpose: the sort key is the
		// bucketing length under shuffle but the primary length without
		// it. Do not unify the two without a training-curve regression.
		lens := s.primaryLens
		if s.shuffle {
			lens = s.bucketingLens
		}
		sort.SliceStable(ids, func(i, j int) bool {
			return lens[ids[i]] > lens[ids[j]]
		})
	}

	return &GroupIter{
		ids:           ids,
		bucketingLens: s.bucketingLens,
		budget:        s.budget,
	}
}

// GroupIter lazily yields index groups for one pass. It is not
// restartable; call Sampler.Iter for a new pass.
type GroupIter struct {
	ids           []int
	bucketingLens []int
	budget        int

	// running group composition, reset after each flush
	cur     []int
	longest int
	count   int

	// groups flushed but not yet returned; a single pop can flush twice
	// (over-budget group followed by an oversized singleton)
	pending [][]int
}

// Next returns the next index group, or false when the pass is done.
// Every group but an oversized singleton satisfies
// longest*len(group) <= budget.
func (it *GroupIter) Next() ([]int, bool) {
	for {
		if len(it.pending) > 0 {
			group := it.pending[0]
			it.pending = it.pending[1:]
			return group, true
		}

		if len(it.ids) == 0 {
			if len(it.cur) == 0 {
				return nil, false
			}
			group := it.cur
			it.reset()
			return group, true
		}

		// pop from the end: with descending sort this drains the
		// shortest examples first, which decides what lands in the
		// final partial group
		idx := it.ids[len(it.ids)-1]
		it.ids = it.ids[:len(it.ids)-1]
		size := it.bucketingLens[idx]

		candidate := size
		if it.longest > candidate {
			candidate = it.longest
		}
		if candidate*(it.count+1) > it.budget && len(it.cur) > 0 {
			it.flush()
		}

		it.cur = append(it.cur, idx)
		if size > it.longest {
			it.longest = size
		}
		it.count++

		// an example bigger than the whole budget ships alone rather
		// than blocking the stream
		if it.count == 1 && it.longest > it.budget {
			it.flush()
		}
	}
}

func (it *GroupIter) flush() {
	it.pending = append(it.pending, it.cur)
	it.reset()
}

func (it *GroupIter) reset() {
	it.cur = nil
	it.longest = 0
	it.count = 0
}
