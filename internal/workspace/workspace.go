// Package workspace ties the subtitle codec, analytics and translation
// providers to the store. Every mutation re-serializes the file and
// persists it together with its recomputed progress and status.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/mgpai22/subdesk/internal/analysis"
	"github.com/mgpai22/subdesk/internal/compare"
	"github.com/mgpai22/subdesk/internal/logging"
	"github.com/mgpai22/subdesk/internal/media"
	"github.com/mgpai22/subdesk/internal/store"
	"github.com/mgpai22/subdesk/internal/subtitle"
)

var (
	ErrEntryOutOfRange = errors.New("entry position out of range")
	ErrNoCandidate     = errors.New("entry has no candidate from provider")
)

// pulls an embedded subtitle track out of a video container
type VideoExtractor interface {
	ExtractSRTText(ctx context.Context, videoPath string) (string, media.SubtitleStream, error)
}

type Workspace struct {
	store     *store.Store
	tracked   []string
	logger    *logging.Logger
	extractor VideoExtractor
}

// New returns a workspace whose progress counts the tracked providers
func New(st *store.Store, tracked []string, logger *logging.Logger) *Workspace {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Workspace{
		store:   st,
		tracked: tracked,
		logger:  logger,
	}
}

// WithExtractor sets the extractor used for video imports. Without one,
// Import looks up ffmpeg on first use.
func (w *Workspace) WithExtractor(e VideoExtractor) *Workspace {
	w.extractor = e
	return w
}

func (w *Workspace) Store() *store.Store {
	return w.store
}

type UploadOptions struct {
	Name      string
	ProjectID string
	Language  string // empty or "auto" detects it from the text
}

type UploadResult struct {
	File    *subtitle.File
	Format  subtitle.Format
	Skipped []subtitle.SkippedBlock
	// encoding the upload was decoded from when it was not UTF-8
	Transcoded string
	// set when the subtitles came out of a video container
	Stream *media.SubtitleStream
}

// Upload parses raw SRT or JSON content and stores it as a new file in
// canonical JSON form
func (w *Workspace) Upload(ctx context.Context, raw string, opts UploadOptions) (*UploadResult, error) {
	content, err := subtitle.ParseContent(raw)
	if err != nil {
		return nil, err
	}
	return w.create(ctx, content, opts)
}

// Import uploads a subtitle file from disk, or the preferred subtitle
// track of a video file
func (w *Workspace) Import(ctx context.Context, path string, opts UploadOptions) (*UploadResult, error) {
	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}

	if !media.IsVideoFile(path) {
		content, err := subtitle.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return w.create(ctx, content, opts)
	}

	if w.extractor == nil {
		extractor, err := media.NewExtractor()
		if err != nil {
			return nil, err
		}
		w.extractor = extractor
	}

	w.logger.Infow("Extracting subtitle track", "video", path)
	raw, stream, err := w.extractor.ExtractSRTText(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract subtitles: %w", err)
	}
	if normalizeLanguage(opts.Language) == "" && stream.Language != "" {
		opts.Language = stream.Language
	}
	opts.Name = strings.TrimSuffix(opts.Name, filepath.Ext(opts.Name)) + ".srt"

	content, err := subtitle.ParseContent(raw)
	if err != nil {
		return nil, err
	}
	res, err := w.create(ctx, content, opts)
	if err != nil {
		return nil, err
	}
	res.Stream = &stream
	return res, nil
}

func (w *Workspace) create(
	ctx context.Context,
	content *subtitle.Content,
	opts UploadOptions,
) (*UploadResult, error) {
	lang := normalizeLanguage(opts.Language)
	if lang == "" {
		if tag := analysis.DetectLanguage(content.Entries); tag != language.Und {
			lang = tag.String()
		}
	}

	serialized, err := subtitle.SerializeEntries(content.Entries)
	if err != nil {
		return nil, err
	}
	progress := analysis.ProviderProgress(content.Entries, w.tracked)

	rec := &store.FileRecord{
		ProjectID: opts.ProjectID,
		Name:      opts.Name,
		Language:  lang,
		Content:   serialized,
		Status:    analysis.StatusFor(progress),
		Progress:  progress,
	}
	if err := w.store.CreateFile(ctx, rec); err != nil {
		return nil, err
	}

	if content.Transcoded != "" {
		w.logger.Warnw("Subtitle file is not UTF-8, decoded it as a legacy encoding",
			"name", opts.Name,
			"encoding", content.Transcoded,
		)
	}

	w.logger.Infow("Uploaded subtitle file",
		"file_id", rec.ID,
		"name", rec.Name,
		"entries", len(content.Entries),
		"skipped", len(content.Skipped),
		"language", lang,
	)

	return &UploadResult{
		File:       fileFromRecord(rec, content.Entries),
		Format:     content.Format,
		Skipped:    content.Skipped,
		Transcoded: content.Transcoded,
	}, nil
}

// normalizeLanguage returns a canonical tag, or "" for auto detection.
// Names ffmpeg reports such as "eng" are accepted too.
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, "auto") || strings.EqualFold(lang, "und") {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// Open loads and decodes a stored file
func (w *Workspace) Open(ctx context.Context, id string) (*subtitle.File, error) {
	rec, err := w.store.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := subtitle.ParseContent(rec.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file %s: %w", id, err)
	}
	return fileFromRecord(rec, content.Entries), nil
}

// save persists the file's entries and recomputes progress and status
func (w *Workspace) save(ctx context.Context, file *subtitle.File) error {
	content, err := subtitle.SerializeEntries(file.Entries)
	if err != nil {
		return err
	}
	file.Progress = analysis.ProviderProgress(file.Entries, w.tracked)
	file.Status = analysis.StatusFor(file.Progress)
	return w.store.Save(ctx, file.ID, content, file.Status, file.Progress)
}

func fileFromRecord(rec *store.FileRecord, entries []subtitle.Entry) *subtitle.File {
	return &subtitle.File{
		ID:         rec.ID,
		ProjectID:  rec.ProjectID,
		Name:       rec.Name,
		Language:   rec.Language,
		Entries:    entries,
		Status:     rec.Status,
		Progress:   rec.Progress,
		UploadedAt: rec.UploadedAt,
	}
}

// entryAt resolves a 1-based position
func entryAt(file *subtitle.File, position int) (*subtitle.Entry, error) {
	if position < 1 || position > len(file.Entries) {
		return nil, fmt.Errorf("%w: %d (file has %d entries)", ErrEntryOutOfRange, position, len(file.Entries))
	}
	return &file.Entries[position-1], nil
}

// SelectAll copies provider's candidate into the translation of every
// entry that has one and returns how many entries changed
func (w *Workspace) SelectAll(ctx context.Context, fileID, provider string) (int, error) {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return 0, err
	}
	selected := 0
	for i := range file.Entries {
		if file.Entries[i].SelectCandidate(provider) {
			selected++
		}
	}
	if selected == 0 {
		return 0, nil
	}
	return selected, w.save(ctx, file)
}

// SelectEntry makes provider's candidate the translation of one entry
func (w *Workspace) SelectEntry(ctx context.Context, fileID string, position int, provider string) error {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return err
	}
	entry, err := entryAt(file, position)
	if err != nil {
		return err
	}
	if !entry.SelectCandidate(provider) {
		return fmt.Errorf("%w %s at position %d", ErrNoCandidate, provider, position)
	}
	return w.save(ctx, file)
}

// SetTranslation stores a free edit; an empty text marks the entry
// untranslated again
func (w *Workspace) SetTranslation(ctx context.Context, fileID string, position int, text string) error {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return err
	}
	entry, err := entryAt(file, position)
	if err != nil {
		return err
	}
	entry.Translation = text
	return w.save(ctx, file)
}

// file analytics together with the provider-candidate score
type Report struct {
	File     *subtitle.File
	Stats    analysis.FileStats
	Progress float64
	Status   subtitle.Status
}

func (w *Workspace) Analyze(ctx context.Context, fileID string) (*Report, error) {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return nil, err
	}
	progress := analysis.ProviderProgress(file.Entries, w.tracked)
	return &Report{
		File:     file,
		Stats:    analysis.Analyze(file.Entries),
		Progress: progress,
		Status:   analysis.StatusFor(progress),
	}, nil
}

func (w *Workspace) Compare(ctx context.Context, leftID, rightID string, mode compare.Mode) (*compare.Report, error) {
	left, err := w.Open(ctx, leftID)
	if err != nil {
		return nil, err
	}
	right, err := w.Open(ctx, rightID)
	if err != nil {
		return nil, err
	}
	report := compare.Compare(left.Entries, right.Entries, mode)
	return &report, nil
}

// Export renders the file as SRT
func (w *Workspace) Export(ctx context.Context, fileID string, mode subtitle.ExportMode) (string, error) {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return "", err
	}
	return subtitle.NewSRTWriter(mode).Encode(file.Entries), nil
}

// ExportTo writes the file as SRT to path, creating parent directories
func (w *Workspace) ExportTo(ctx context.Context, fileID string, mode subtitle.ExportMode, path string) error {
	file, err := w.Open(ctx, fileID)
	if err != nil {
		return err
	}
	if err := subtitle.NewSRTWriter(mode).Write(file.Entries, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type ProjectSummary struct {
	Project  *subtitle.Project
	Files    []store.FileRecord
	Progress float64
	Status   subtitle.Status
}

// ProjectStatus averages the stored progress of the project's files
func (w *Workspace) ProjectStatus(ctx context.Context, projectID string) (*ProjectSummary, error) {
	project, err := w.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	records, err := w.store.ListFiles(ctx, projectID)
	if err != nil {
		return nil, err
	}

	files := make([]subtitle.File, len(records))
	for i, rec := range records {
		files[i] = subtitle.File{ID: rec.ID, Progress: rec.Progress}
	}
	progress := analysis.ProjectProgress(files)

	return &ProjectSummary{
		Project:  project,
		Files:    records,
		Progress: progress,
		Status:   analysis.StatusFor(progress),
	}, nil
}
