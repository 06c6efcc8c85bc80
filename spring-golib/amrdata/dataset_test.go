package amrdata

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-nlp/spring/spring-golib/amr"
	"github.com/spring-nlp/spring/spring-golib/tokenizer"
)

func labeledGraph(id, snt, body string) *amr.Graph {
	return &amr.Graph{
		Metadata: map[string]string{"id": id, "snt": snt},
		Text:     body,
	}
}

func testGraphs(n int) []*amr.Graph {
	graphs := make([]*amr.Graph, 0, n)
	for i := 0; i < n; i++ {
		graphs = append(graphs, labeledGraph(
			fmt.Sprintf("g%d", i),
			fmt.Sprintf("sentence number %d", i),
			fmt.Sprintf("(x%d / thing-%d)", i, i),
		))
	}
	return graphs
}

func TestNewDataset(t *testing.T) {
	graphs := testGraphs(5)
	ds, err := NewDataset(graphs, tokenizer.NewWhitespace(), Params{})
	require.NoError(t, err)

	require.Equal(t, 5, ds.Len())
	require.True(t, ds.Labeled())

	ex := ds.Example(2)
	assert.Equal(t, 2, ex.ID)
	assert.Equal(t, "sentence number 2", ex.Sentence)
	assert.Equal(t, "(x2 / thing-2)", ex.LinearizedGraph)
	assert.Len(t, ex.TokenizedIDs, 3)
	assert.Len(t, ex.LinearizedIDs, 3)

	assert.Equal(t, []int{3, 3, 3, 3, 3}, ds.TokenizedLens())
	assert.Equal(t, []int{3, 3, 3, 3, 3}, ds.LinearizedLens())
}

func TestNewDatasetSharding(t *testing.T) {
	graphs := testGraphs(7)

	var total int
	seen := map[string]bool{}
	for rank := 0; rank < 3; rank++ {
		ds, err := NewDataset(graphs, tokenizer.NewWhitespace(), Params{Rank: rank, WorldSize: 3})
		require.NoError(t, err)
		for i := 0; i < ds.Len(); i++ {
			id := ds.Example(i).Graph.ID()
			require.False(t, seen[id], "instance %s claimed by two ranks", id)
			seen[id] = true
		}
		total += ds.Len()
	}
	require.Equal(t, len(graphs), total)

	_, err := NewDataset(graphs, tokenizer.NewWhitespace(), Params{Rank: 3, WorldSize: 3})
	require.Error(t, err)
}

func TestNewDatasetFilters(t *testing.T) {
	long := labeledGraph("long", "a sentence", "("+strings.Repeat("x ", 50)+")")
	// 24 source tokens against a 3-token graph trips the ratio filter
	bad := labeledGraph("bad", strings.TrimSpace(strings.Repeat("w ", 24)), "(b / bad)")
	graphs := append(testGraphs(3), long, bad)

	ds, err := NewDataset(graphs, tokenizer.NewWhitespace(), Params{RemoveLongerThan: 10})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	// evaluation datasets keep everything
	ds, err = NewDataset(graphs, tokenizer.NewWhitespace(), Params{RemoveLongerThan: 10, Evaluation: true})
	require.NoError(t, err)
	require.Equal(t, 5, ds.Len())
}

func TestNewDatasetUnlabeled(t *testing.T) {
	graphs := []*amr.Graph{
		{Metadata: map[string]string{"id": "s0", "snt": "first sentence"}},
		{Metadata: map[string]string{"id": "s1", "snt": "second sentence here"}},
	}

	ds, err := NewDataset(graphs, tokenizer.NewWhitespace(), Params{Evaluation: true})
	require.NoError(t, err)
	require.False(t, ds.Labeled())
	require.Equal(t, 2, ds.Len())
	assert.Nil(t, ds.Example(0).LinearizedIDs)
	assert.Equal(t, []int{0, 0}, ds.LinearizedLens())
}

func TestNewDatasetMixedCorpus(t *testing.T) {
	graphs := []*amr.Graph{
		labeledGraph("g0", "a sentence", "(a / thing)"),
		{Metadata: map[string]string{"id": "s1", "snt": "no graph"}},
	}

	_, err := NewDataset(graphs, tokenizer.NewWhitespace(), Params{})
	require.Error(t, err)
}

func TestNewDatasetEmpty(t *testing.T) {
	ds, err := NewDataset(nil, tokenizer.NewWhitespace(), Params{})
	require.NoError(t, err)
	require.Equal(t, 0, ds.Len())
}
