// Package train drives epochs of token-budget batches through a model.
// The model itself (forward pass, optimizer, gradient sync) lives behind
// the Model interface; this package only owns the loop.
package train

import (
	"time"

	"github.com/spring-nlp/spring/spring-golib/batching"
	"github.com/spring-nlp/spring/spring-golib/errors"
	"github.com/spring-nlp/spring/spring-golib/springlog"
)

// smoothing factor of the running-average loss reported during training
const lossAlpha = 0.98

// Model consumes one batch per step and reports its loss
type Model interface {
	TrainStep(b batching.Batch) (float64, error)
	EvalStep(b batching.Batch) (float64, error)
}

// Callbacks hook into the loop. Any nil callback is skipped; a callback
// error aborts the run.
type Callbacks struct {
	// BatchCompleted fires after every training batch
	BatchCompleted func(epoch, step int, loss float64) error
	// EpochCompleted fires after every epoch with the smoothed loss
	EpochCompleted func(epoch int, loss float64) error
}

// Trainer runs training epochs over a Loader
type Trainer struct {
	Loader *batching.Loader
	Model  Model
	Logger *springlog.Logger

	// LogEvery logs the running loss every n batches; 0 disables
	LogEvery int
}

// NewTrainer ...
func NewTrainer(loader *batching.Loader, model Model) *Trainer {
	return &Trainer{
		Loader:   loader,
		Model:    model,
		Logger:   springlog.Basic,
		LogEvery: 100,
	}
}

// Run trains for the given number of epochs
func (t *Trainer) Run(epochs int, cb Callbacks) error {
	for epoch := 1; epoch <= epochs; epoch++ {
		loss, err := t.Epoch(epoch, cb)
		if err != nil {
			return errors.Wrapf(err, "epoch %d failed", epoch)
		}
		if cb.EpochCompleted != nil {
			if err := cb.EpochCompleted(epoch, loss); err != nil {
				return err
			}
		}
	}
	if len(t.Logger.Durations) > 0 {
		t.Logger.Durations.Flush(t.Logger)
	}
	return nil
}

// Epoch runs one full pass of the training loader and returns the
// smoothed training loss.
func (t *Trainer) Epoch(epoch int, cb Callbacks) (float64, error) {
	start := time.Now()

	it, err := t.Loader.Iter()
	if err != nil {
		return 0, errors.Wrapf(err, "unable to start pass over training data")
	}

	avg := newRunningAverage(lossAlpha)
	var step int
	for it.Next() {
		loss, err := t.Model.TrainStep(it.Batch())
		if err != nil {
			return 0, errors.Wrapf(err, "train step %d failed", step)
		}
		avg.update(loss)
		step++

		if t.LogEvery > 0 && step%t.LogEvery == 0 {
			t.Logger.Printf("epoch %d step %d loss %.4f", epoch, step, avg.value())
		}
		if cb.BatchCompleted != nil {
			if err := cb.BatchCompleted(epoch, step, loss); err != nil {
				return 0, err
			}
		}
	}
	if err := it.Err(); err != nil {
		return 0, err
	}

	t.Logger.Durations.Record("epoch", time.Since(start))
	t.Logger.Printf("epoch %d done: %d batches, loss %.4f, took %s", epoch, step, avg.value(), time.Since(start))
	return avg.value(), nil
}

// Evaluate runs one pass of the given loader through the model's eval
// step and returns the arithmetic mean loss.
func Evaluate(loader *batching.Loader, model Model) (float64, error) {
	it, err := loader.Iter()
	if err != nil {
		return 0, errors.Wrapf(err, "unable to start eval pass")
	}

	var total float64
	var n int
	for it.Next() {
		loss, err := model.EvalStep(it.Batch())
		if err != nil {
			return 0, errors.Wrapf(err, "eval step %d failed", n)
		}
		total += loss
		n++
	}
	if err := it.Err(); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return total / float64(n), nil
}

// runningAverage is an exponentially smoothed average, seeded with the
// first observation.
type runningAverage struct {
	alpha float64
	val   float64
	seen  bool
}

func newRunningAverage(alpha float64) *runningAverage {
	return &runningAverage{alpha: alpha}
}

func (r *runningAverage) update(v float64) {
	if !r.seen {
		r.val = v
		r.seen = true
		return
	}
	r.val = r.alpha*r.val + (1-r.alpha)*v
}

func (r *runningAverage) value() float64 {
	return r.val
}
