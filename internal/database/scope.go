package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
)

// ContextScopeKey は gin.Context に Scope を保存するキーです。
const ContextScopeKey = "database.scope"

// Scope は1リクエスト専用のDBハンドルです。
// 最初のクエリでプールから接続を借り、Release で必ず返却します。
// 複数のゴルーチンから同時に使うことは想定していません。
type Scope struct {
	db   *sql.DB
	conn *sql.Conn
}

// NewScope は未接続の Scope を作成します。
func NewScope(db *sql.DB) *Scope {
	return &Scope{db: db}
}

// Acquired は接続を借りているかどうかを返します。
func (s *Scope) Acquired() bool {
	return s.conn != nil
}

func (s *Scope) acquire(ctx context.Context) (*sql.Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

// ExecContext は借りた接続でステートメントを実行します。
func (s *Scope) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn.ExecContext(ctx, query, args...)
}

// QueryContext は借りた接続でクエリを実行します。
func (s *Scope) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn.QueryContext(ctx, query, args...)
}

// QueryRowContext は借りた接続で1行取得します。
// 接続を借りられなかった場合はそのエラーを Scan が返し、プールには戻りません。
func (s *Scope) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	return QueryRow(ctx, s, query, args...)
}

// Release は借りている接続をプールへ返します。何度呼んでも安全です。
func (s *Scope) Release() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Middleware はリクエストごとに Scope を用意し、処理終了時に必ず解放します。
func Middleware(db *sql.DB, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := NewScope(db)
		defer func() {
			if err := scope.Release(); err != nil && logger != nil {
				logger.Printf("failed to release db connection: %v", err)
			}
		}()
		c.Set(ContextScopeKey, scope)
		c.Next()
	}
}

// From は Middleware が用意した Scope を取り出します。
// Middleware を通っていない場合は panic します（sessions.Default と同じ扱い）。
func From(c *gin.Context) *Scope {
	return c.MustGet(ContextScopeKey).(*Scope)
}

var _ DBTX = (*Scope)(nil)
