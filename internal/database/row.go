package database

import (
	"context"
	"database/sql"
)

// Row は QueryRow の結果です。*sql.Row と同じく、エラーは Scan まで持ち越します。
type Row struct {
	rows *sql.Rows
	err  error
}

// QueryRow は db で1行取得します。
// *sql.Row はエラーを外から持たせられないため、QueryContext の結果を包みます。
func QueryRow(ctx context.Context, db DBTX, query string, args ...any) *Row {
	rows, err := db.QueryContext(ctx, query, args...)
	return &Row{rows: rows, err: err}
}

// Err は Scan を呼ばずにクエリのエラーを確認します。
func (r *Row) Err() error {
	return r.err
}

// Scan は最初の行を dest に読み込みます。行がなければ sql.ErrNoRows を返します。
func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	defer r.rows.Close()

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := r.rows.Scan(dest...); err != nil {
		return err
	}
	return r.rows.Close()
}
