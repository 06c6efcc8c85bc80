// Package amr holds the corpus-side representation of AMR annotations.
// The graph body is kept as opaque text: linearizing it into token ids is
// the tokenizer's job, not ours.
package amr

// Graph is one annotated instance from a corpus file: its metadata lines
// plus the raw graph text. Instances are immutable once loaded.
type Graph struct {
	Metadata map[string]string
	Text     string
}

// ID returns the instance id from the metadata, if present
func (g *Graph) ID() string {
	return g.Metadata["id"]
}

// Sentence returns the source sentence annotated by this graph
func (g *Graph) Sentence() string {
	return g.Metadata["snt"]
}

// Lang returns the declared sentence language, if any
func (g *Graph) Lang() string {
	return g.Metadata["snt_lang"]
}
