package translate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/subdesk/internal/logging"
)

const DefaultConcurrency = 3

// result for one item; Err is set instead of Text when the provider failed
type Outcome struct {
	Index int
	Text  string
	Err   error
}

// Run translates items in parallel batches and never aborts on a provider
// failure: each item gets its own Outcome, in the order of items. Batches
// that had not started when ctx was cancelled carry ctx.Err().
func Run(
	ctx context.Context,
	tr Translator,
	items []TranslationItem,
	concurrency int,
	logger *logging.Logger,
) []Outcome {
	if logger == nil {
		logger = logging.Nop()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batchSize := 1
	if b, ok := tr.(Batcher); ok && b.BatchSize() > 0 {
		batchSize = b.BatchSize()
	}

	outcomes := make([]Outcome, len(items))
	for i, item := range items {
		outcomes[i].Index = item.Index
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		g.Go(func() error {
			// each goroutine owns outcomes[start:end]
			runBatch(ctx, tr, items[start:end], outcomes[start:end], logger)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runBatch(
	ctx context.Context,
	tr Translator,
	batch []TranslationItem,
	out []Outcome,
	logger *logging.Logger,
) {
	fail := func(err error) {
		for i := range out {
			out[i].Err = err
		}
	}

	if err := ctx.Err(); err != nil {
		fail(err)
		return
	}

	results, err := tr.Translate(ctx, batch)
	if err != nil {
		logger.Debugw("Translation batch failed",
			"first_index", batch[0].Index,
			"items", len(batch),
			"error", err,
		)
		fail(err)
		return
	}

	pos := make(map[int]int, len(batch))
	for i, item := range batch {
		pos[item.Index] = i
	}
	filled := make([]bool, len(batch))
	for _, r := range results {
		i, ok := pos[r.Index]
		if !ok {
			continue
		}
		out[i].Text = r.Text
		filled[i] = true
	}
	for i := range out {
		if !filled[i] {
			out[i].Err = fmt.Errorf("no translation returned for item %d", batch[i].Index)
		}
	}
}
