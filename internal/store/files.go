package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

// stored subtitle document; Content is the serialized entry string
type FileRecord struct {
	ID         string
	ProjectID  string // empty when unassigned
	Name       string
	Language   string
	Content    string
	Status     subtitle.Status
	Progress   float64
	UploadedAt time.Time
	UpdatedAt  time.Time
}

var fileColumns = []string{
	"id",
	"project_id",
	"name",
	"language",
	"content",
	"status",
	"progress",
	"uploaded_at",
	"updated_at",
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateFile inserts rec, filling ID and timestamps when unset
func (s *Store) CreateFile(ctx context.Context, rec *FileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = subtitle.StatusNotStarted
	}

	if rec.ProjectID != "" {
		if _, err := s.GetProject(ctx, rec.ProjectID); err != nil {
			return err
		}
	}

	q := s.sq.Insert("files").Columns(fileColumns...).Values(
		rec.ID,
		nullable(rec.ProjectID),
		rec.Name,
		rec.Language,
		rec.Content,
		string(rec.Status),
		rec.Progress,
		formatTime(rec.UploadedAt),
		formatTime(rec.UpdatedAt),
	)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (s *Store) GetFile(ctx context.Context, id string) (*FileRecord, error) {
	q := s.sq.Select(fileColumns...).From("files").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanFile(s.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Load returns the stored content string of a file
func (s *Store) Load(ctx context.Context, id string) (string, error) {
	rec, err := s.GetFile(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.Content, nil
}

// Save replaces a file's content together with its derived status and
// progress
func (s *Store) Save(
	ctx context.Context,
	id string,
	content string,
	status subtitle.Status,
	progress float64,
) error {
	q := s.sq.Update("files").
		Set("content", content).
		Set("status", string(status)).
		Set("progress", progress).
		Set("updated_at", formatTime(time.Now())).
		Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return affected(res, "file", id)
}

// ListFiles returns files oldest first, without content. A non-empty
// projectID restricts the list to that project.
func (s *Store) ListFiles(ctx context.Context, projectID string) ([]FileRecord, error) {
	q := s.sq.Select(fileColumns...).From("files").OrderBy("uploaded_at", "id")
	if projectID != "" {
		q = q.Where(sq.Eq{"project_id": projectID})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FileRecord{}
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		rec.Content = ""
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// AssignProject moves a file into a project; an empty projectID unassigns it
func (s *Store) AssignProject(ctx context.Context, fileID, projectID string) error {
	if projectID != "" {
		if _, err := s.GetProject(ctx, projectID); err != nil {
			return err
		}
	}

	q := s.sq.Update("files").
		Set("project_id", nullable(projectID)).
		Set("updated_at", formatTime(time.Now())).
		Where(sq.Eq{"id": fileID})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to assign file: %w", err)
	}
	return affected(res, "file", fileID)
}

func (s *Store) DeleteFile(ctx context.Context, id string) error {
	sqlStr, args, err := s.sq.Delete("files").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return affected(res, "file", id)
}

func scanFile(row rowScanner) (*FileRecord, error) {
	var rec FileRecord
	var projectID sql.NullString
	var status, uploaded, updated string
	if err := row.Scan(
		&rec.ID,
		&projectID,
		&rec.Name,
		&rec.Language,
		&rec.Content,
		&status,
		&rec.Progress,
		&uploaded,
		&updated,
	); err != nil {
		return nil, err
	}
	rec.ProjectID = projectID.String
	rec.Status = subtitle.Status(status)
	rec.UploadedAt = parseTime(uploaded)
	rec.UpdatedAt = parseTime(updated)
	return &rec, nil
}
