// Package users は資格情報ストア（user テーブル）へのアクセスを提供します。
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourusername/250words/internal/database"
)

var (
	// ErrNotFound は該当ユーザーが存在しない場合に返されます。
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername はユーザー名の一意制約に違反した場合に返されます。
	ErrDuplicateUsername = errors.New("username already registered")
)

// User は登録済みアカウントです。PasswordHash に平文が入ることはありません。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Repository は user テーブルの読み書きを行います。
type Repository struct {
	db database.DBTX
}

// NewRepository は Repository を作成します。
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Create はユーザーを1件追加し、採番された ID を含めて返します。
func (r *Repository) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user (username, password) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}

	return &User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetByUsername はユーザー名でユーザーを取得します。
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx,
		`SELECT id, username, password FROM user WHERE username = ?`,
		username,
	)
}

// GetByID は ID でユーザーを取得します。
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx,
		`SELECT id, username, password FROM user WHERE id = ?`,
		id,
	)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := database.QueryRow(ctx, r.db, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}
