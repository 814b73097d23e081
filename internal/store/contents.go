package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"famcontents/internal/content"
	"famcontents/internal/generation"
	"famcontents/internal/services"
)

const contentColumns = "id, title, summary, channels_json, files_json, excerpts_json, direction, tone, instructions, created_at, updated_at"

// ContentFilter narrows ListContents.
type ContentFilter struct {
	Channel generation.Kind
	Limit   int
}

// CreateContent normalizes c, assigns an id when missing, and inserts it.
func (s *Store) CreateContent(ctx context.Context, c *content.Content) (*content.Content, error) {
	if c == nil {
		return nil, errors.New("content is nil")
	}
	item := c.Clone()
	if err := item.Normalize(); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := s.now()
	item.CreatedAt, item.UpdatedAt = now, now

	args, err := contentArgs(item)
	if err != nil {
		return nil, err
	}
	_, err = s.execWithRetry(ctx,
		`INSERT INTO contents (`+contentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{item.ID}, append(args, formatTime(item.CreatedAt), formatTime(item.UpdatedAt))...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	return item, nil
}

// UpdateContent replaces the editable fields of an existing content item.
func (s *Store) UpdateContent(ctx context.Context, c *content.Content) (*content.Content, error) {
	if c == nil || c.ID == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "update content", "id is required", nil)
	}
	existing, err := s.GetContent(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, services.Wrap(services.ErrNotFound, "store", "update content", c.ID, nil)
	}
	item := c.Clone()
	if err := item.Normalize(); err != nil {
		return nil, err
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now()

	args, err := contentArgs(item)
	if err != nil {
		return nil, err
	}
	_, err = s.execWithRetry(ctx,
		`UPDATE contents
         SET title = ?, summary = ?, channels_json = ?, files_json = ?, excerpts_json = ?,
             direction = ?, tone = ?, instructions = ?, updated_at = ?
         WHERE id = ?`,
		append(args, formatTime(item.UpdatedAt), item.ID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return item, nil
}

// GetContent returns the content with id, or nil when it does not exist.
func (s *Store) GetContent(ctx context.Context, id string) (*content.Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = ?`, id)
	item, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return item, nil
}

// ListContents returns content items ordered by creation time.
func (s *Store) ListContents(ctx context.Context, filter ContentFilter) ([]*content.Content, error) {
	query := sq.Select(contentColumns).From("contents").OrderBy("created_at", "id")
	if filter.Channel != "" {
		query = query.Where(sq.Like{"channels_json": `%"` + string(filter.Channel) + `"%`})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build content query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	var items []*content.Content
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteContent removes a content item and, through the foreign key, its variants.
func (s *Store) DeleteContent(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM contents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	s.purgeCache()
	return affected > 0, nil
}

func contentArgs(c *content.Content) ([]any, error) {
	channels, err := json.Marshal(c.Channels)
	if err != nil {
		return nil, fmt.Errorf("encode channels: %w", err)
	}
	files, err := json.Marshal(c.Files)
	if err != nil {
		return nil, fmt.Errorf("encode files: %w", err)
	}
	excerpts, err := json.Marshal(c.Excerpts)
	if err != nil {
		return nil, fmt.Errorf("encode excerpts: %w", err)
	}
	return []any{
		c.Title,
		c.Summary,
		string(channels),
		string(files),
		string(excerpts),
		nullableString(c.Direction),
		nullableString(string(c.Tone)),
		nullableString(c.Instructions),
	}, nil
}

func scanContent(scanner interface{ Scan(dest ...any) error }) (*content.Content, error) {
	var (
		item         content.Content
		channelsJSON string
		filesJSON    string
		excerptsJSON string
		direction    sql.NullString
		tone         sql.NullString
		instructions sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&item.ID,
		&item.Title,
		&item.Summary,
		&channelsJSON,
		&filesJSON,
		&excerptsJSON,
		&direction,
		&tone,
		&instructions,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(channelsJSON), &item.Channels); err != nil {
		return nil, fmt.Errorf("decode channels for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(filesJSON), &item.Files); err != nil {
		return nil, fmt.Errorf("decode files for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(excerptsJSON), &item.Excerpts); err != nil {
		return nil, fmt.Errorf("decode excerpts for %s: %w", item.ID, err)
	}
	item.Direction = direction.String
	item.Tone = generation.Tone(tone.String)
	item.Instructions = instructions.String
	if t, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = t
	}
	if t, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = t
	}
	return &item, nil
}
