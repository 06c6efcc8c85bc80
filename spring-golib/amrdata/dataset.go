// Package amrdata turns a loaded AMR corpus into an indexable dataset of
// tokenized examples, ready for token-budget batching.
package amrdata

import (
	"log"
	"runtime"

	"github.com/spring-nlp/spring/spring-golib/amr"
	"github.com/spring-nlp/spring/spring-golib/errors"
	"github.com/spring-nlp/spring/spring-golib/tokenizer"
	"github.com/spring-nlp/spring/spring-golib/workerpool"
)

// An instance whose source side is this many times longer than its
// linearized graph is almost certainly a data bug; training on it hurts.
const maxSourceTargetRatio = 5.0

// Params configures dataset construction
type Params struct {
	// Rank / WorldSize claim every WorldSize-th instance starting at Rank,
	// so each data-owning process holds a disjoint shard before any
	// batching begins. WorldSize 0 means a single process.
	Rank      int
	WorldSize int

	// RemoveLongerThan discards training instances whose linearized graph
	// exceeds this many tokens. 0 disables the filter.
	RemoveLongerThan int

	// Evaluation keeps every instance: the length and ratio filters only
	// apply to training data.
	Evaluation bool

	// NumGo bounds tokenization parallelism. 0 picks a default.
	NumGo int
}

// Example is one immutable dataset record. LinearizedIDs is nil for
// unlabeled (sentence-only) datasets.
type Example struct {
	ID              int
	Sentence        string
	TokenizedIDs    []int64
	LinearizedIDs   []int64
	LinearizedGraph string
	Graph           *amr.Graph
}

// Dataset is a read-only collection of tokenized examples plus the two
// parallel length arrays the batch sampler indexes into.
type Dataset struct {
	tok tokenizer.Tokenizer

	examples       []Example
	tokenizedLens  []int
	linearizedLens []int
	labeled        bool
}

// NewDataset tokenizes the rank's shard of the given graphs. All graphs
// must agree on whether they carry a body: a labeled corpus with a few
// empty graphs is a data error, not something to paper over.
func NewDataset(graphs []*amr.Graph, tok tokenizer.Tokenizer, p Params) (*Dataset, error) {
	if p.WorldSize == 0 {
		p.WorldSize = 1
	}
	if p.WorldSize < 1 {
		return nil, errors.Errorf("world size must be positive, got %d", p.WorldSize)
	}
	if p.Rank < 0 || p.Rank >= p.WorldSize {
		return nil, errors.Errorf("rank %d out of range for world size %d", p.Rank, p.WorldSize)
	}
	if p.NumGo <= 0 {
		p.NumGo = runtime.NumCPU() / 2
	}

	var shard []*amr.Graph
	for i := p.Rank; i < len(graphs); i += p.WorldSize {
		shard = append(shard, graphs[i])
	}

	labeled := len(shard) > 0 && shard[0].Text != ""

	results := make([]Example, len(shard))
	jobs := make([]workerpool.Job, 0, len(shard))
	for i, g := range shard {
		i, g := i, g
		jobs = append(jobs, func() error {
			ex, err := tokenizeOne(g, tok, labeled)
			if err != nil {
				return err
			}
			results[i] = ex
			return nil
		})
	}

	pool := workerpool.New(p.NumGo)
	pool.AddBlocking(jobs)
	if err := pool.Wait(); err != nil {
		return nil, errors.Wrapf(err, "unable to tokenize corpus")
	}

	ds := &Dataset{tok: tok, labeled: labeled}
	isTrain := !p.Evaluation
	var discarded int
	for _, ex := range results {
		if isTrain && labeled {
			if p.RemoveLongerThan > 0 && len(ex.LinearizedIDs) > p.RemoveLongerThan {
				discarded++
				continue
			}
			if float64(len(ex.TokenizedIDs))/float64(len(ex.LinearizedIDs)) > maxSourceTargetRatio {
				log.Printf("bad training instance len(in):%d/len(out):%d", len(ex.TokenizedIDs), len(ex.LinearizedIDs))
				discarded++
				continue
			}
		}
		ex.ID = len(ds.examples)
		ds.examples = append(ds.examples, ex)
		ds.tokenizedLens = append(ds.tokenizedLens, len(ex.TokenizedIDs))
		ds.linearizedLens = append(ds.linearizedLens, len(ex.LinearizedIDs))
	}

	log.Printf("the number of instances %d, discarded %d", len(ds.examples), discarded)
	return ds, nil
}

func tokenizeOne(g *amr.Graph, tok tokenizer.Tokenizer, labeled bool) (Example, error) {
	if g.Sentence() == "" {
		return Example{}, errors.Errorf("instance %s has no sentence", g.ID())
	}
	if labeled != (g.Text != "") {
		return Example{}, errors.Errorf("instance %s disagrees with the corpus on having a graph body", g.ID())
	}

	ids, err := tok.Encode(g.Sentence())
	if err != nil {
		return Example{}, errors.Wrapf(err, "unable to encode sentence of %s", g.ID())
	}

	ex := Example{
		Sentence:     g.Sentence(),
		TokenizedIDs: ids,
		Graph:        g,
	}
	if labeled {
		lin, linStr, err := tok.Linearize(g)
		if err != nil {
			return Example{}, errors.Wrapf(err, "unable to linearize %s", g.ID())
		}
		ex.LinearizedIDs = lin
		ex.LinearizedGraph = linStr
	}
	return ex, nil
}

// Len returns the number of examples in this shard
func (d *Dataset) Len() int {
	return len(d.examples)
}

// Example returns the record at index i; the record must not be mutated
func (d *Dataset) Example(i int) Example {
	return d.examples[i]
}

// Labeled reports whether examples carry linearized graphs
func (d *Dataset) Labeled() bool {
	return d.labeled
}

// TokenizedLens is the primary length array: source-sentence token counts
func (d *Dataset) TokenizedLens() []int {
	return d.tokenizedLens
}

// LinearizedLens is the bucketing length array: linearized-graph token
// counts, zero for unlabeled datasets
func (d *Dataset) LinearizedLens() []int {
	return d.linearizedLens
}

// PadID returns the tokenizer's padding id
func (d *Dataset) PadID() int64 {
	return d.tok.PadID()
}
