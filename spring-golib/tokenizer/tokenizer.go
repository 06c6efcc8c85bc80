// Package tokenizer defines the encoding capability the data pipeline
// consumes. The real sentence tokenizer and graph linearizer live outside
// this repository; the pipeline only needs token ids and a pad id.
package tokenizer

import (
	"github.com/spring-nlp/spring/spring-golib/amr"
)

// Tokenizer turns sentences and graphs into token id sequences.
//
// Linearize additionally returns the linearized string form of the graph,
// which rides along each batch for debugging and prediction output.
type Tokenizer interface {
	Encode(sentence string) ([]int64, error)
	Linearize(g *amr.Graph) ([]int64, string, error)
	PadID() int64
}
