// Package blog はログインユーザーが投稿を作成・編集・削除できるブログ機能を提供します。
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/250words/internal/database"
)

// ErrNotFound は投稿が存在しない場合に返されます。
var ErrNotFound = errors.New("post not found")

// Post は1件の投稿です。AuthorUsername は一覧・取得時に user テーブルから補完されます。
type Post struct {
	ID             int64
	AuthorID       int64
	AuthorUsername string
	Created        time.Time
	Title          string
	Body           string
}

// Repository は post テーブルの読み書きを行います。
type Repository struct {
	db  database.DBTX
	now func() time.Time
}

// NewRepository は Repository を作成します。
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db, now: time.Now}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

const selectPost = `SELECT p.id, p.author_id, u.username, p.created, p.title, p.body
	FROM post p JOIN user u ON p.author_id = u.id`

// List は全投稿を新しい順に返します。
func (r *Repository) List(ctx context.Context) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPost+` ORDER BY p.created DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get は ID で投稿を取得します。
func (r *Repository) Get(ctx context.Context, id int64) (*Post, error) {
	row := database.QueryRow(ctx, r.db, selectPost+` WHERE p.id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// Create は投稿を追加して ID を返します。
func (r *Repository) Create(ctx context.Context, authorID int64, title, body string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO post (author_id, created, title, body) VALUES (?, ?, ?, ?)`,
		authorID, toMillis(r.now()), title, body,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read post id: %w", err)
	}
	return id, nil
}

// Update はタイトルと本文を更新します。
func (r *Repository) Update(ctx context.Context, id int64, title, body string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE post SET title = ?, body = ? WHERE id = ?`,
		title, body, id,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireAffected(res)
}

// Delete は投稿を削除します。
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM post WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (Post, error) {
	var (
		post    Post
		created int64
	)
	if err := s.Scan(&post.ID, &post.AuthorID, &post.AuthorUsername, &created, &post.Title, &post.Body); err != nil {
		return Post{}, err
	}
	post.Created = fromMillis(created)
	return post, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
