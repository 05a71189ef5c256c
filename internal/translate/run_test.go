package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeTranslator prefixes texts and fails any item whose text contains "bad"
type fakeTranslator struct {
	batch int
	calls atomic.Int32
	mu    sync.Mutex
	seen  [][]TranslationItem
}

func (f *fakeTranslator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, items)
	f.mu.Unlock()

	results := make([]TranslationResult, 0, len(items))
	for _, item := range items {
		if strings.Contains(item.Text, "bad") {
			return nil, fmt.Errorf("provider rejected %q", item.Text)
		}
		results = append(results, TranslationResult{Index: item.Index, Text: "tr:" + item.Text})
	}
	return results, nil
}

type batchingFake struct {
	*fakeTranslator
}

func (b batchingFake) BatchSize() int { return b.batch }

func items(texts ...string) []TranslationItem {
	out := make([]TranslationItem, len(texts))
	for i, text := range texts {
		out[i] = TranslationItem{Index: i, Text: text}
	}
	return out
}

func TestRunIsolatesItemFailures(t *testing.T) {
	fake := &fakeTranslator{}
	outcomes := Run(context.Background(), fake, items("a", "bad", "c"), 2, nil)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Text != "tr:a" || outcomes[0].Err != nil {
		t.Errorf("outcome 0 = %+v", outcomes[0])
	}
	if outcomes[1].Err == nil || outcomes[1].Text != "" {
		t.Errorf("outcome 1 should carry the provider error, got %+v", outcomes[1])
	}
	if outcomes[2].Text != "tr:c" || outcomes[2].Err != nil {
		t.Errorf("outcome 2 = %+v", outcomes[2])
	}
	if got := fake.calls.Load(); got != 3 {
		t.Errorf("expected one call per item, got %d", got)
	}
}

func TestRunUsesBatchSize(t *testing.T) {
	fake := batchingFake{&fakeTranslator{batch: 2}}
	outcomes := Run(context.Background(), fake, items("a", "b", "c", "bad", "e"), 4, nil)

	if got := fake.calls.Load(); got != 3 {
		t.Errorf("expected 3 batches, got %d", got)
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcome %d has index %d", i, o.Index)
		}
	}
	// "c" shares a batch with "bad", so the whole batch fails
	for _, i := range []int{2, 3} {
		if outcomes[i].Err == nil {
			t.Errorf("outcome %d should have failed with its batch", i)
		}
	}
	for _, i := range []int{0, 1, 4} {
		if outcomes[i].Err != nil {
			t.Errorf("outcome %d unexpected error %v", i, outcomes[i].Err)
		}
	}
}

type droppingTranslator struct{}

func (droppingTranslator) Translate(
	_ context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	return []TranslationResult{{Index: items[0].Index, Text: "only first"}, {Index: 99, Text: "stray"}}, nil
}

func (droppingTranslator) BatchSize() int { return 10 }

func TestRunFlagsMissingResults(t *testing.T) {
	outcomes := Run(context.Background(), droppingTranslator{}, items("a", "b"), 1, nil)

	if outcomes[0].Text != "only first" || outcomes[0].Err != nil {
		t.Errorf("outcome 0 = %+v", outcomes[0])
	}
	if outcomes[1].Err == nil {
		t.Error("outcome 1 should report a missing translation")
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeTranslator{}
	outcomes := Run(ctx, fake, items("a", "b"), 1, nil)

	for i, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("outcome %d error = %v, want context.Canceled", i, o.Err)
		}
	}
	if fake.calls.Load() != 0 {
		t.Error("no provider calls expected after cancellation")
	}
}

func TestRunEmpty(t *testing.T) {
	if outcomes := Run(context.Background(), &fakeTranslator{}, nil, 0, nil); len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}
