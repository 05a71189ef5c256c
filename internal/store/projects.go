package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

var projectColumns = []string{"id", "name", "description", "created_at"}

func (s *Store) CreateProject(ctx context.Context, name, description string) (*subtitle.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	p := &subtitle.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	q := s.sq.Insert("projects").Columns(projectColumns...).
		Values(p.ID, p.Name, p.Description, formatTime(p.CreatedAt))
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*subtitle.Project, error) {
	q := s.sq.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProject(s.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns projects newest first
func (s *Store) ListProjects(ctx context.Context) ([]subtitle.Project, error) {
	q := s.sq.Select(projectColumns...).From("projects").OrderBy("created_at DESC", "id")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []subtitle.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeleteProject removes the project and unassigns its files; the files
// themselves are kept.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		unassign, args, err := s.sq.Update("files").
			Set("project_id", nil).
			Where(sq.Eq{"project_id": id}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, unassign, args...); err != nil {
			return fmt.Errorf("failed to unassign files: %w", err)
		}

		del, args, err := s.sq.Delete("projects").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, del, args...)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return affected(res, "project", id)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*subtitle.Project, error) {
	var p subtitle.Project
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &created); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}
