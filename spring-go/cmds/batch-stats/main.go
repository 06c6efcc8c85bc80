// batch-stats reports how a corpus packs into token-budget batches:
// batch counts, token totals and padding waste. It drives the full data
// pipeline with the diagnostic whitespace tokenizer, so the numbers
// reflect batching behavior rather than any trained vocabulary.
package main

import (
	"log"
	"math/rand"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/spring-nlp/spring/spring-golib/amr"
	"github.com/spring-nlp/spring/spring-golib/amrdata"
	"github.com/spring-nlp/spring/spring-golib/batching"
	"github.com/spring-nlp/spring/spring-golib/config"
	"github.com/spring-nlp/spring/spring-golib/tokenizer"
)

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	args := struct {
		Config    string `arg:"required" help:"YAML training config"`
		Dev       bool   `help:"use the dev corpus instead of train"`
		Budget    int    `help:"override the config token budget"`
		Shuffle   bool   `help:"shuffle before bucketing"`
		NoSort    bool   `help:"disable length sorting"`
		Seed      int64  `help:"shuffle seed (0 = nondeterministic)"`
		Rank      int
		WorldSize int `arg:"--world-size"`
	}{
		WorldSize: 1,
	}
	arg.MustParse(&args)

	cfg, err := config.Load(args.Config)
	fail(err)

	pattern := cfg.Train
	if args.Dev {
		pattern = cfg.Dev
	}
	budget := cfg.BatchSize
	if args.Budget > 0 {
		budget = args.Budget
	}

	graphs, err := amr.ReadCorpus(pattern)
	fail(err)
	log.Printf("read %s instances from %s", humanize.Comma(int64(len(graphs))), pattern)

	ds, err := amrdata.NewDataset(graphs, tokenizer.NewWhitespace(), amrdata.Params{
		Rank:             args.Rank,
		WorldSize:        args.WorldSize,
		RemoveLongerThan: cfg.RemoveLongerThan,
	})
	fail(err)

	loader := batching.NewLoader(ds, budget, "cpu")
	loader.Shuffle = args.Shuffle
	loader.Sort = !args.NoSort
	if args.Seed != 0 {
		loader.Rng = rand.New(rand.NewSource(args.Seed))
	}

	it, err := loader.Iter()
	fail(err)

	var batches, rows int
	var realTokens, paddedTokens int64
	var largest int
	for it.Next() {
		batch := it.Batch()
		batches++
		rows += len(batch.Inputs.InputIDs)

		target := batch.Targets
		if target == nil {
			continue
		}
		for i := range target.Labels {
			// +1: the shift drops one column per row
			width := len(target.Labels[i]) + 1
			paddedTokens += int64(width)
			realTokens += int64(len(ds.Example(batch.Extra.IDs[i]).LinearizedIDs))
		}
		if area := len(target.Labels) * (len(target.Labels[0]) + 1); area > largest {
			largest = area
		}
	}
	fail(it.Err())

	log.Printf("token budget %s: %s batches over %s examples",
		humanize.Comma(int64(budget)), humanize.Comma(int64(batches)), humanize.Comma(int64(rows)))
	if paddedTokens > 0 {
		waste := 100 * float64(paddedTokens-realTokens) / float64(paddedTokens)
		log.Printf("target tokens %s padded / %s real (%.1f%% padding waste), largest batch area %s",
			humanize.Comma(paddedTokens), humanize.Comma(realTokens), waste, humanize.Comma(int64(largest)))
	}
}
