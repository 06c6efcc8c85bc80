package batching

import (
	"math/rand"

	"github.com/spring-nlp/spring/spring-golib/amr"
	"github.com/spring-nlp/spring/spring-golib/amrdata"
)

// field names used for collation
const (
	fieldTokenized  = "tokenized_ids"
	fieldLinearized = "linearized_ids"
)

// Extra is the per-batch auxiliary metadata: everything the training and
// evaluation code needs to map tensors back to corpus instances.
type Extra struct {
	IDs              []int
	Sentences        []string
	LinearizedGraphs []string
	Graphs           []*amr.Graph
}

// Batch is one collated training/eval step. Targets is nil for
// unlabeled datasets. Device records where the consumer should place the
// tensors; the loader only carries it along.
type Batch struct {
	Inputs  Inputs
	Targets *Targets
	Extra   Extra
	Device  string
}

// Loader composes the sampler and the collator over a dataset. Budget,
// Device, Shuffle and Sort may be changed between passes; each Iter call
// reads them fresh, never an in-flight pass.
type Loader struct {
	Budget  int
	Device  string
	Shuffle bool
	Sort    bool

	// Rng makes shuffling deterministic when set; nil uses process-wide
	// entropy
	Rng *rand.Rand

	dataset *amrdata.Dataset
}

// NewLoader ...
func NewLoader(dataset *amrdata.Dataset, budget int, device string) *Loader {
	return &Loader{
		Budget:  budget,
		Device:  device,
		Sort:    true,
		dataset: dataset,
	}
}

// Dataset returns the backing dataset
func (l *Loader) Dataset() *amrdata.Dataset {
	return l.dataset
}

// Iter starts one pass over the dataset. The configuration is captured
// here: mutating the Loader mid-pass never tears a batch.
func (l *Loader) Iter() (*BatchIter, error) {
	// unlabeled datasets have no linearized side, so their source
	// lengths drive the budget instead
	bucketing := l.dataset.LinearizedLens()
	if !l.dataset.Labeled() {
		bucketing = l.dataset.TokenizedLens()
	}

	sampler, err := NewSampler(l.dataset.TokenizedLens(), bucketing, l.Budget, SamplerOpts{
		Shuffle: l.Shuffle,
		Sort:    l.Sort,
		Rng:     l.Rng,
	})
	if err != nil {
		return nil, err
	}

	it := &BatchIter{
		dataset: l.dataset,
		device:  l.Device,
	}

	if l.Shuffle {
		// epoch-level shuffle reorders whole groups, never their
		// contents; that requires materializing the group list
		var groups [][]int
		for gi := sampler.Iter(); ; {
			g, ok := gi.Next()
			if !ok {
				break
			}
			groups = append(groups, g)
		}
		shuffleFn := rand.Shuffle
		if l.Rng != nil {
			shuffleFn = l.Rng.Shuffle
		}
		shuffleFn(len(groups), func(i, j int) {
			groups[i], groups[j] = groups[j], groups[i]
		})
		it.groups = groups
	} else {
		it.sampler = sampler.Iter()
	}

	return it, nil
}

// BatchIter yields collated batches for one pass, bufio.Scanner style:
//
//	it, err := loader.Iter()
//	for it.Next() {
//		batch := it.Batch()
//	}
//	if err := it.Err(); err != nil { ... }
type BatchIter struct {
	dataset *amrdata.Dataset
	device  string

	// exactly one of these is set, depending on epoch shuffling
	sampler *GroupIter
	groups  [][]int

	cur Batch
	err error
}

// Next advances to the next batch. It returns false at the end of the
// pass or on the first error.
func (it *BatchIter) Next() bool {
	if it.err != nil {
		return false
	}

	var group []int
	if it.sampler != nil {
		g, ok := it.sampler.Next()
		if !ok {
			return false
		}
		group = g
	} else {
		if len(it.groups) == 0 {
			return false
		}
		group = it.groups[0]
		it.groups = it.groups[1:]
	}

	batch, err := it.collate(group)
	if err != nil {
		it.err = err
		return false
	}
	it.cur = batch
	return true
}

// Batch returns the batch produced by the last successful Next
func (it *BatchIter) Batch() Batch {
	return it.cur
}

// Err returns the error that stopped the pass, if any
func (it *BatchIter) Err() error {
	return it.err
}

func (it *BatchIter) collate(group []int) (Batch, error) {
	padID := it.dataset.PadID()
	labeled := it.dataset.Labeled()

	records := make([]Record, len(group))
	extra := Extra{
		IDs:       make([]int, len(group)),
		Sentences: make([]string, len(group)),
		Graphs:    make([]*amr.Graph, len(group)),
	}
	if labeled {
		extra.LinearizedGraphs = make([]string, len(group))
	}

	for i, id := range group {
		ex := it.dataset.Example(id)
		rec := Record{fieldTokenized: ex.TokenizedIDs}
		if labeled {
			rec[fieldLinearized] = ex.LinearizedIDs
			extra.LinearizedGraphs[i] = ex.LinearizedGraph
		}
		records[i] = rec
		extra.IDs[i] = ex.ID
		extra.Sentences[i] = ex.Sentence
		extra.Graphs[i] = ex.Graph
	}

	specs := []FieldSpec{{Name: fieldTokenized, PadID: padID, Mask: true}}
	if labeled {
		specs = append(specs, FieldSpec{Name: fieldLinearized, PadID: padID})
	}

	fields, err := CollateFields(records, specs)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{
		Inputs: Inputs{
			InputIDs:      fields[fieldTokenized].Values,
			AttentionMask: fields[fieldTokenized].Mask,
		},
		Extra:  extra,
		Device: it.device,
	}
	if labeled {
		decoderInputs, labels := ShiftForDecoder(fields[fieldLinearized].Values)
		batch.Targets = &Targets{
			DecoderInputIDs: decoderInputs,
			Labels:          labels,
		}
	}
	return batch, nil
}
