package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/alexanderramin/tempo/internal/db"
)

// FailingDB wraps a DBTX and injects Err into reads, writes, or both. It
// stands in for an unreachable store.
//
// QueryRowContext cannot return an error directly, so failing row reads are
// redirected to a query that errors at Scan time.
type FailingDB struct {
	db.DBTX
	FailReads  bool
	FailWrites bool
	Err        error

	Reads  atomic.Int32
	Writes atomic.Int32
}

func (f *FailingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.Writes.Add(1)
	if f.FailWrites {
		return nil, f.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

func (f *FailingDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	f.Reads.Add(1)
	if f.FailReads {
		return nil, f.Err
	}
	return f.DBTX.QueryContext(ctx, query, args...)
}

func (f *FailingDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	f.Reads.Add(1)
	if f.FailReads {
		return f.DBTX.QueryRowContext(ctx, `SELECT * FROM no_such_table`)
	}
	return f.DBTX.QueryRowContext(ctx, query, args...)
}
