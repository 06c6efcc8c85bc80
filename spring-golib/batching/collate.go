// Package batching assembles variable-length token sequences into
// token-budget batches: a greedy length-aware sampler, a padding
// collator, and a loader composing the two over a dataset.
package batching

import (
	"github.com/spring-nlp/spring/spring-golib/errors"
)

// Pad right-pads the given sequences with padID into a rectangular
// tensor of shape (len(seqs) x longest). Row order preserves input order.
func Pad(seqs [][]int64, padID int64) [][]int64 {
	padded, _ := pad(seqs, padID, false)
	return padded
}

// PadWithMask is Pad plus a 0/1 attention mask of the same shape, where
// mask[i][j] is 1 iff j is within sequence i's original length. The mask
// is positional: it stays correct even if padID can occur in real data.
func PadWithMask(seqs [][]int64, padID int64) ([][]int64, [][]int64) {
	return pad(seqs, padID, true)
}

func pad(seqs [][]int64, padID int64, withMask bool) ([][]int64, [][]int64) {
	var longest int
	for _, seq := range seqs {
		if len(seq) > longest {
			longest = len(seq)
		}
	}

	padded := make([][]int64, len(seqs))
	var mask [][]int64
	if withMask {
		mask = make([][]int64, len(seqs))
	}
	for i, seq := range seqs {
		row := make([]int64, longest)
		copy(row, seq)
		for j := len(seq); j < longest; j++ {
			row[j] = padID
		}
		padded[i] = row
		if withMask {
			m := make([]int64, longest)
			for j := range seq {
				m[j] = 1
			}
			mask[i] = m
		}
	}
	return padded, mask
}

// FieldSpec names one variable-length field to collate, the pad value to
// fill it with, and whether an attention mask is wanted for it.
type FieldSpec struct {
	Name  string
	PadID int64
	Mask  bool
}

// Record holds one example's variable-length fields, keyed by field name
type Record map[string][]int64

// PaddedField is one collated field: the padded value tensor and, if
// requested, its mask
type PaddedField struct {
	Values [][]int64
	Mask   [][]int64
}

// CollateFields collates each spec'd field across all records. A record
// missing a spec'd field is a fatal data error.
func CollateFields(records []Record, specs []FieldSpec) (map[string]PaddedField, error) {
	out := make(map[string]PaddedField, len(specs))
	for _, spec := range specs {
		seqs := make([][]int64, len(records))
		for i, rec := range records {
			seq, ok := rec[spec.Name]
			if !ok {
				return nil, errors.Errorf("record %d is missing field %s", i, spec.Name)
			}
			seqs[i] = seq
		}
		values, mask := pad(seqs, spec.PadID, spec.Mask)
		out[spec.Name] = PaddedField{Values: values, Mask: mask}
	}
	return out, nil
}

// ShiftForDecoder derives the decoder-side pair from a padded target
// tensor: inputs drop the last column, labels drop the first. Rows share
// backing arrays with the input tensor.
func ShiftForDecoder(padded [][]int64) (inputs, labels [][]int64) {
	inputs = make([][]int64, len(padded))
	labels = make([][]int64, len(padded))
	for i, row := range padded {
		if len(row) == 0 {
			continue
		}
		inputs[i] = row[:len(row)-1]
		labels[i] = row[1:]
	}
	return inputs, labels
}

// Inputs is the encoder side of a batch
type Inputs struct {
	InputIDs      [][]int64
	AttentionMask [][]int64
}

// Targets is the decoder side of a batch
type Targets struct {
	DecoderInputIDs [][]int64
	Labels          [][]int64
}

// ReverseDirection swaps the roles of the two sides for
// graph-to-sentence training: the target sequence (decoder inputs glued
// back together with the final label column) becomes the new encoder
// input, and the old encoder input is shifted into the decoder pair.
// The rebuilt mask compares against padID, which therefore must not
// occur in real data.
func ReverseDirection(x Inputs, y Targets, padID int64) (Inputs, Targets) {
	inputIDs := make([][]int64, len(y.DecoderInputIDs))
	mask := make([][]int64, len(y.DecoderInputIDs))
	for i, row := range y.DecoderInputIDs {
		glued := make([]int64, 0, len(row)+1)
		glued = append(glued, row...)
		if labels := y.Labels[i]; len(labels) > 0 {
			glued = append(glued, labels[len(labels)-1])
		}
		m := make([]int64, len(glued))
		for j, v := range glued {
			if v != padID {
				m[j] = 1
			}
		}
		inputIDs[i] = glued
		mask[i] = m
	}

	decoderInputs, labels := ShiftForDecoder(x.InputIDs)
	return Inputs{InputIDs: inputIDs, AttentionMask: mask},
		Targets{DecoderInputIDs: decoderInputs, Labels: labels}
}
