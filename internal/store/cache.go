package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mgpai22/subdesk/internal/translate"
)

// TranslationCache is the SQLite implementation of translate.Cache
type TranslationCache struct {
	store *Store
}

func (s *Store) TranslationCache() *TranslationCache {
	return &TranslationCache{store: s}
}

var _ translate.Cache = (*TranslationCache)(nil)

func (c *TranslationCache) Get(ctx context.Context, key translate.CacheKey) (string, bool, error) {
	q := c.store.sq.Select("translation").
		From("translation_cache").
		Where(sq.Eq{"cache_key": key.Hash()}).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return "", false, err
	}

	var text string
	err = c.store.db.QueryRowContext(ctx, sqlStr, args...).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *TranslationCache) Put(ctx context.Context, key translate.CacheKey, text string) error {
	q := c.store.sq.Insert("translation_cache").
		Columns(
			"cache_key",
			"provider",
			"src_lang",
			"tgt_lang",
			"model",
			"source_text",
			"translation",
			"created_at",
		).
		Values(
			key.Hash(),
			string(key.Provider),
			key.Source,
			key.Target,
			key.Model,
			key.Text,
			text,
			formatTime(time.Now()),
		).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET translation=excluded.translation")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = c.store.db.ExecContext(ctx, sqlStr, args...)
	return err
}
