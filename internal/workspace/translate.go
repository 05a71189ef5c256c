package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/mgpai22/subdesk/internal/subtitle"
	"github.com/mgpai22/subdesk/internal/translate"
)

// outcome of one translation run over a file
type TranslateSummary struct {
	Provider   translate.Provider
	Requested  int
	Translated int
	Failed     int
	// entries left untouched because the run was cancelled
	Cancelled int
	Progress  float64
	Status    subtitle.Status
}

// Translate fills provider's candidate slot on every entry with text.
//
// A provider failure is stored on the entry as the candidate error and
// never aborts the run. When ctx is cancelled mid-run, the entries that
// already finished are still saved, the rest keep their prior state, and
// ctx.Err() is returned alongside the summary.
func (w *Workspace) Translate(
	ctx context.Context,
	fileID string,
	provider translate.Provider,
	tr translate.Translator,
	concurrency int,
) (*TranslateSummary, error) {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return nil, err
	}

	items := make([]translate.TranslationItem, 0, len(file.Entries))
	for i, entry := range file.Entries {
		if strings.TrimSpace(entry.Text) == "" {
			continue
		}
		items = append(items, translate.TranslationItem{Index: i, Text: entry.Text})
	}

	summary := &TranslateSummary{Provider: provider, Requested: len(items)}

	log := w.logger.With("file_id", fileID, "provider", provider)
	log.Infow("Translating subtitles",
		"items", len(items),
		"concurrency", concurrency,
	)

	slot := string(provider)
	for _, out := range translate.Run(ctx, tr, items, concurrency, log) {
		entry := &file.Entries[out.Index]
		switch {
		case out.Err == nil:
			entry.SetCandidate(slot, out.Text)
			summary.Translated++
		case ctx.Err() != nil && isCancellation(out.Err):
			summary.Cancelled++
		default:
			entry.SetCandidateError(slot, out.Err.Error())
			summary.Failed++
		}
	}

	// finished entries are kept even if the caller gave up
	if err := w.save(context.WithoutCancel(ctx), file); err != nil {
		return nil, err
	}
	summary.Progress = file.Progress
	summary.Status = file.Status

	log.Infow("Translation complete",
		"translated", summary.Translated,
		"failed", summary.Failed,
		"cancelled", summary.Cancelled,
		"progress", summary.Progress,
	)

	if summary.Cancelled > 0 {
		return summary, ctx.Err()
	}
	return summary, nil
}

// provider timeouts also match DeadlineExceeded; only the caller's ctx
// counts as cancellation
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
