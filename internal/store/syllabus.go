package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type syllabusRepo struct {
	db *sql.DB
}

func (r *syllabusRepo) Save(ctx context.Context, rec *SyllabusRecord) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	params := rec.Params
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	query, args := builder.Insert(tableSyllabi).
		Columns(syllabusColumns...).
		Values(rec.Name, rec.Topic, rec.Audience, string(params), rec.Text, 0,
			now.UnixMilli(), now.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("topic")
				u.SetExcluded("audience")
				u.SetExcluded("params")
				u.SetExcluded("body")
				u.SetExcluded("updated_at")
				u.Set("verified", 0)
			}),
		).
		Query()
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save syllabus %q: %w", rec.Name, err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.Verified = false
	return nil
}

var syllabusColumns = []string{
	"name", "topic", "audience", "params", "body", "verified", "created_at", "updated_at",
}

func (r *syllabusRepo) Get(ctx context.Context, name string) (*SyllabusRecord, error) {
	query, args := builder.Select(syllabusColumns...).
		From(entsql.Table(tableSyllabi)).
		Where(entsql.EQ("name", name)).
		Query()
	rec, err := scanSyllabus(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *syllabusRepo) List(ctx context.Context) ([]SyllabusRecord, error) {
	query, args := builder.Select(syllabusColumns...).
		From(entsql.Table(tableSyllabi)).
		OrderBy(entsql.Desc("updated_at"), "name").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list syllabi: %w", err)
	}
	defer rows.Close()

	var out []SyllabusRecord
	for rows.Next() {
		rec, err := scanSyllabus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *syllabusRepo) UpdateText(ctx context.Context, name, text string) error {
	query, args := builder.Update(tableSyllabi).
		Set("body", text).
		Set("verified", 0).
		Set("updated_at", time.Now().UTC().UnixMilli()).
		Where(entsql.EQ("name", name)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update syllabus %q: %w", name, err)
	}
	return requireAffected(res, name)
}

func (r *syllabusRepo) MarkVerified(ctx context.Context, name string) error {
	query, args := builder.Update(tableSyllabi).
		Set("verified", 1).
		Set("updated_at", time.Now().UTC().UnixMilli()).
		Where(entsql.EQ("name", name)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("verify syllabus %q: %w", name, err)
	}
	return requireAffected(res, name)
}

func requireAffected(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("syllabus %q: %w", name, ErrNotFound)
	}
	return nil
}

func scanSyllabus(row rowScanner) (*SyllabusRecord, error) {
	var (
		rec              SyllabusRecord
		params           string
		verified         int
		created, updated int64
	)
	err := row.Scan(&rec.Name, &rec.Topic, &rec.Audience, &params, &rec.Text, &verified, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan syllabus: %w", err)
	}
	rec.Params = json.RawMessage(params)
	rec.Verified = verified != 0
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return &rec, nil
}
