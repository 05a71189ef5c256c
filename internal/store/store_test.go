package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/subdesk/internal/subtitle"
	"github.com/mgpai22/subdesk/internal/translate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "subdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdesk.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateProject(context.Background(), "Season 1", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// reopening must not re-run migrations or lose data
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	projects, err := s.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestFileLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := &FileRecord{Name: "episode01.srt", Language: "en", Content: "[]"}
	require.NoError(t, s.CreateFile(ctx, rec))
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, subtitle.StatusNotStarted, rec.Status)

	content, err := s.Load(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "[]", content)

	require.NoError(t, s.Save(ctx, rec.ID, `[{"id":1}]`, subtitle.StatusInProgress, 37.5))

	got, err := s.GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, got.Content)
	assert.Equal(t, subtitle.StatusInProgress, got.Status)
	assert.Equal(t, 37.5, got.Progress)
	assert.Equal(t, "episode01.srt", got.Name)
	assert.Empty(t, got.ProjectID)
	assert.WithinDuration(t, rec.UploadedAt, got.UploadedAt, 0)

	files, err := s.ListFiles(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Empty(t, files[0].Content, "listing omits content")

	require.NoError(t, s.DeleteFile(ctx, rec.ID))
	_, err = s.GetFile(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingFile(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Load(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Save(ctx, "nope", "[]", subtitle.StatusDone, 100), ErrNotFound)
	assert.ErrorIs(t, s.DeleteFile(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, s.AssignProject(ctx, "nope", ""), ErrNotFound)
}

func TestDeleteProjectKeepsFiles(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	project, err := s.CreateProject(ctx, "Anime", "fansub batch")
	require.NoError(t, err)

	inProject := &FileRecord{Name: "a.srt", Content: "[]", ProjectID: project.ID}
	loose := &FileRecord{Name: "b.srt", Content: "[]"}
	require.NoError(t, s.CreateFile(ctx, inProject))
	require.NoError(t, s.CreateFile(ctx, loose))

	files, err := s.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, inProject.ID, files[0].ID)

	require.NoError(t, s.DeleteProject(ctx, project.ID))

	_, err = s.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	survivor, err := s.GetFile(ctx, inProject.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.ProjectID)

	all, err := s.ListFiles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, s.DeleteProject(ctx, project.ID), ErrNotFound)
}

func TestAssignProject(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	project, err := s.CreateProject(ctx, "Movies", "")
	require.NoError(t, err)
	rec := &FileRecord{Name: "film.srt", Content: "[]"}
	require.NoError(t, s.CreateFile(ctx, rec))

	require.NoError(t, s.AssignProject(ctx, rec.ID, project.ID))
	got, err := s.GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ProjectID)

	require.NoError(t, s.AssignProject(ctx, rec.ID, ""))
	got, err = s.GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ProjectID)

	assert.ErrorIs(t, s.AssignProject(ctx, rec.ID, "missing-project"), ErrNotFound)
}

func TestCreateFileRejectsUnknownProject(t *testing.T) {
	s := openTestStore(t)
	err := s.CreateFile(context.Background(), &FileRecord{Name: "x.srt", Content: "", ProjectID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProjectRequiresName(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateProject(context.Background(), "   ", "")
	assert.Error(t, err)
}

func TestTranslationCache(t *testing.T) {
	ctx := context.Background()
	cache := openTestStore(t).TranslationCache()

	key := translate.CacheKey{Provider: translate.ProviderNLP, Source: "en", Target: "vi", Text: "Hello"}

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, key, "Xin chào"))
	require.NoError(t, cache.Put(ctx, key, "Chào bạn"))

	text, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Chào bạn", text)

	other := key
	other.Target = "fr"
	_, ok, err = cache.Get(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)

	otherModel := key
	otherModel.Model = "gemini-2.5-flash"
	_, ok, err = cache.Get(ctx, otherModel)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, cache.Put(ctx, otherModel, "Xin chào (flash)"))

	text, ok, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Chào bạn", text)
}
