package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// Article is a saved link with a headline.
type Article struct {
	ID        int64  `json:"id"`
	Headline  string `json:"headline"`
	Link      string `json:"link"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ArticlePatch is the allow-list for generic article updates.
var ArticlePatch = PatchSpec{
	Table:    "articles",
	IDColumn: "id",
	Allowed:  []string{"headline", "link"},
}

const articleColumns = "id, headline, link, created_at, updated_at"

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var a Article
	if err := row.Scan(&a.ID, &a.Headline, &a.Link, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArticle inserts an article. A colliding link is a conflict.
func (d *DB) CreateArticle(ctx context.Context, headline, link string) (*Article, error) {
	res, err := d.Exec(ctx,
		"INSERT INTO articles (headline, link) VALUES (?, ?)", headline, link)
	if err != nil {
		if IsUnique(err) {
			return nil, trackerrors.Conflict("an article with this link already exists")
		}
		return nil, classify("create article", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create article", err)
	}
	return d.GetArticle(ctx, id)
}

// GetArticle retrieves an article by id.
func (d *DB) GetArticle(ctx context.Context, id int64) (*Article, error) {
	row := d.QueryRow(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	a, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("article", id)
		}
		return nil, trackerrors.Internal(fmt.Sprintf("get article %d", id), err)
	}
	return a, nil
}

// ArticleListOpts filters ListArticles.
type ArticleListOpts struct {
	Query string // headline substring
}

// ListArticles returns articles newest first.
func (d *DB) ListArticles(ctx context.Context, opts ArticleListOpts) ([]Article, error) {
	query := "SELECT " + articleColumns + " FROM articles"
	var args []any
	if opts.Query != "" {
		query += " WHERE headline LIKE ?"
		args = append(args, "%"+escapeLike(opts.Query)+"%")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, trackerrors.Internal("list articles", err)
	}
	defer func() { _ = rows.Close() }()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, trackerrors.Internal("scan article", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate articles", err)
	}
	return articles, nil
}

// UpdateArticle applies an allow-listed partial update and returns the new row.
func (d *DB) UpdateArticle(ctx context.Context, id int64, fields map[string]any) (*Article, error) {
	if err := d.Patch(ctx, ArticlePatch, id, fields); err != nil {
		if te := trackerrors.AsTrackError(err); te != nil && te.Code == trackerrors.CodeConflict {
			return nil, trackerrors.Conflict("an article with this link already exists")
		}
		return nil, err
	}
	return d.GetArticle(ctx, id)
}

// DeleteArticle hard-deletes an article.
func (d *DB) DeleteArticle(ctx context.Context, id int64) error {
	res, err := d.Exec(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return classify("delete article", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return trackerrors.Internal("delete article", err)
	}
	if n == 0 {
		return trackerrors.NotFound("article", id)
	}
	return nil
}

// ArticleStats summarizes the articles table.
type ArticleStats struct {
	Total         int    `json:"total"`
	LatestCreated string `json:"latest_created,omitempty"`
}

// GetArticleStats returns aggregate counts over the articles table.
func (d *DB) GetArticleStats(ctx context.Context) (*ArticleStats, error) {
	var s ArticleStats
	var latest sql.NullString
	err := d.QueryRow(ctx,
		"SELECT COUNT(*), MAX(created_at) FROM articles").Scan(&s.Total, &latest)
	if err != nil {
		return nil, trackerrors.Internal("article stats", err)
	}
	s.LatestCreated = latest.String
	return &s, nil
}

// escapeLike escapes LIKE wildcards in user input. SQLite treats the
// backslash as an escape only with an explicit ESCAPE clause, so we strip
// the wildcards instead of escaping them.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "%", "")
	return strings.ReplaceAll(s, "_", "")
}
