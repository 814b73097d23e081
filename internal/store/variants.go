package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"famcontents/internal/generation"
	"famcontents/internal/variant"
)

const variantColumns = "id, content_id, channel, body_json, source, failure_reason, status, created_at, updated_at, archived_at, trashed_at"

var _ variant.Store = (*Store)(nil)

// Find returns the variant for key, or nil when none exists.
func (s *Store) Find(ctx context.Context, key variant.Key) (*variant.Variant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+variantColumns+` FROM variants WHERE content_id = ? AND channel = ?`,
		key.ContentID, string(key.Channel),
	)
	v, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find variant: %w", err)
	}
	s.remember(v)
	return v, nil
}

// Get returns the variant with id, or nil when none exists. Reads go through
// the LRU cache when one is configured.
func (s *Store) Get(ctx context.Context, id string) (*variant.Variant, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(id); ok {
			return v.Clone(), nil
		}
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+variantColumns+` FROM variants WHERE id = ?`, id)
	v, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	s.remember(v)
	return v, nil
}

// Create inserts v unless its (content_id, channel) pair is taken.
func (s *Store) Create(ctx context.Context, v *variant.Variant) error {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO variants (`+variantColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(content_id, channel) DO NOTHING`,
		v.ID,
		v.ContentID,
		string(v.Channel),
		string(v.Body),
		string(v.Source),
		nullableString(v.FailureReason),
		string(v.Status),
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
		nullableTime(v.ArchivedAt),
		nullableTime(v.TrashedAt),
	)
	if err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return variant.ErrExists
	}
	s.remember(v)
	return nil
}

// Update persists status, flags and body of an existing variant.
func (s *Store) Update(ctx context.Context, v *variant.Variant) error {
	if v == nil {
		return errors.New("variant is nil")
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE variants
         SET body_json = ?, source = ?, failure_reason = ?, status = ?,
             updated_at = ?, archived_at = ?, trashed_at = ?
         WHERE id = ?`,
		string(v.Body),
		string(v.Source),
		nullableString(v.FailureReason),
		string(v.Status),
		formatTime(v.UpdatedAt),
		nullableTime(v.ArchivedAt),
		nullableTime(v.TrashedAt),
		v.ID,
	)
	if err != nil {
		s.forget(v.ID)
		return fmt.Errorf("update variant: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		s.forget(v.ID)
		return fmt.Errorf("update variant %s: no such variant", v.ID)
	}
	s.remember(v)
	return nil
}

// List returns variants matching filter ordered by creation time.
func (s *Store) List(ctx context.Context, filter variant.Filter) ([]*variant.Variant, error) {
	query := sq.Select(variantColumns).From("variants").OrderBy("created_at", "id")
	if filter.ContentID != "" {
		query = query.Where(sq.Eq{"content_id": filter.ContentID})
	}
	if filter.Channel != "" {
		query = query.Where(sq.Eq{"channel": string(filter.Channel)})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		query = query.Where(sq.Eq{"status": statuses})
	}
	if !filter.IncludeTrashed {
		query = query.Where(sq.Eq{"trashed_at": nil})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build variant query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var out []*variant.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PurgeTrashed deletes variants trashed before olderThan.
func (s *Store) PurgeTrashed(ctx context.Context, olderThan time.Time) (int64, error) {
	stmt, args, err := sq.Delete("variants").
		Where(sq.NotEq{"trashed_at": nil}).
		Where(sq.Lt{"trashed_at": formatTime(olderThan)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge query: %w", err)
	}
	res, err := s.execWithRetry(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("purge trashed variants: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		s.purgeCache()
	}
	return n, nil
}

// StatusCounts returns the number of live variants per status.
func (s *Store) StatusCounts(ctx context.Context, contentID string) (map[variant.Status]int, error) {
	query := sq.Select("status", "COUNT(1)").From("variants").
		Where(sq.Eq{"trashed_at": nil}).
		GroupBy("status")
	if contentID != "" {
		query = query.Where(sq.Eq{"content_id": contentID})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("variant stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[variant.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[variant.Status(status)] = count
	}
	return stats, rows.Err()
}

func (s *Store) remember(v *variant.Variant) {
	if s.cache != nil && v != nil {
		s.cache.Add(v.ID, v.Clone())
	}
}

func (s *Store) forget(id string) {
	if s.cache != nil {
		s.cache.Remove(id)
	}
}

func (s *Store) purgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func scanVariant(scanner interface{ Scan(dest ...any) error }) (*variant.Variant, error) {
	var (
		v             variant.Variant
		channel       string
		body          string
		source        string
		failureReason sql.NullString
		status        string
		createdRaw    string
		updatedRaw    string
		archivedRaw   sql.NullString
		trashedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&v.ID,
		&v.ContentID,
		&channel,
		&body,
		&source,
		&failureReason,
		&status,
		&createdRaw,
		&updatedRaw,
		&archivedRaw,
		&trashedRaw,
	); err != nil {
		return nil, err
	}
	v.Channel = generation.Kind(channel)
	v.Body = []byte(body)
	v.Source = generation.Source(source)
	v.FailureReason = failureReason.String
	v.Status = variant.Status(status)
	if t, err := parseTimeString(createdRaw); err == nil {
		v.CreatedAt = t
	}
	if t, err := parseTimeString(updatedRaw); err == nil {
		v.UpdatedAt = t
	}
	v.ArchivedAt = parseNullableTime(archivedRaw)
	v.TrashedAt = parseNullableTime(trashedRaw)
	return &v, nil
}
