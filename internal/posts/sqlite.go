package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// DefaultTablePrefix is the stock WordPress table prefix.
const DefaultTablePrefix = "wp_"

const (
	statusPublish = "publish"
	typePost      = "post"
)

type postRow struct {
	bun.BaseModel `bun:"table:wp_posts,alias:p"`

	ID      int64          `bun:"ID,pk"`
	Title   sql.NullString `bun:"post_title"`
	Name    sql.NullString `bun:"post_name"`
	Content sql.NullString `bun:"post_content"`
	Excerpt sql.NullString `bun:"post_excerpt"`
	Date    sql.NullString `bun:"post_date"`
	Status  sql.NullString `bun:"post_status"`
	Type    sql.NullString `bun:"post_type"`
}

type metaRow struct {
	bun.BaseModel `bun:"table:wp_postmeta,alias:pm"`

	ID     int64          `bun:"meta_id,pk"`
	PostID int64          `bun:"post_id"`
	Key    sql.NullString `bun:"meta_key"`
	Value  sql.NullString `bun:"meta_value"`
}

// Database reads published posts straight from a WordPress database that
// was converted to SQLite (or any bun supported dialect).
type Database struct {
	db     *bun.DB
	prefix string
}

// NewDatabase wraps db. An empty prefix uses DefaultTablePrefix.
func NewDatabase(db *bun.DB, prefix string) *Database {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	return &Database{db: db, prefix: prefix}
}

// Posts returns every published post, newest first, with its metadata.
func (d *Database) Posts(ctx context.Context) ([]RawPost, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("posts: database source requires a connection")
	}

	var rows []postRow
	err := d.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS p", bun.Ident(d.prefix+"posts")).
		Where("p.post_status = ?", statusPublish).
		Where("p.post_type = ?", typePost).
		OrderExpr("p.post_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("posts: query posts: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	meta, err := d.meta(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]RawPost, 0, len(rows))
	for _, row := range rows {
		out = append(out, RawPost{
			ID:      LegacyID(row.ID),
			Title:   row.Title.String,
			Slug:    row.Name.String,
			Content: row.Content.String,
			Excerpt: row.Excerpt.String,
			Date:    row.Date.String,
			Meta:    meta[row.ID],
		})
	}
	return out, nil
}

func (d *Database) meta(ctx context.Context, rows []postRow) (map[int64]Meta, error) {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var metaRows []metaRow
	err := d.db.NewSelect().
		Model(&metaRows).
		ModelTableExpr("? AS pm", bun.Ident(d.prefix+"postmeta")).
		Where("pm.post_id IN (?)", bun.In(ids)).
		OrderExpr("pm.meta_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("posts: query post meta: %w", err)
	}

	out := make(map[int64]Meta, len(rows))
	for _, row := range metaRows {
		if !row.Key.Valid {
			continue
		}
		if out[row.PostID] == nil {
			out[row.PostID] = Meta{}
		}
		out[row.PostID][row.Key.String] = row.Value.String
	}
	return out, nil
}
