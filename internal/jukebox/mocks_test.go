package jukebox

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ct shortens mock Exec signatures.
type ct = pgconn.CommandTag

func commandTag(s string) pgconn.CommandTag { return pgconn.NewCommandTag(s) }

// MockDB implements DB for handler and engine tests.
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockRows{}, nil
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

func (m *MockDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if m.BeginTxFunc != nil {
		return m.BeginTxFunc(ctx, txOptions)
	}
	return &MockTx{}, nil
}

// MockRow implements pgx.Row.
type MockRow struct {
	ScanFunc func(dest ...any) error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.ScanFunc != nil {
		return m.ScanFunc(dest...)
	}
	return nil
}

// MockTx implements pgx.Tx. Methods without an override fall through
// to the embedded nil interface and panic, which keeps tests honest
// about what they expect to be called.
type MockTx struct {
	pgx.Tx

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *MockTx) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockRows{}, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

// MockRows implements the pgx.Rows surface the engine touches.
type MockRows struct {
	pgx.Rows

	Data [][]any
	idx  int
}

func (m *MockRows) Next() bool {
	if m.idx >= len(m.Data) {
		return false
	}
	m.idx++
	return true
}

func (m *MockRows) Scan(dest ...any) error {
	row := m.Data[m.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
	}
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockRows) Close()     {}
func (m *MockRows) Err() error { return nil }

// assign writes v through the pointer dest, allocating a pointer cell
// when dest is a pointer-to-pointer (nullable columns).
func assign(dest any, v any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("assign: destination %T is not a pointer", dest)
	}
	ev := dv.Elem()

	if v == nil {
		ev.Set(reflect.Zero(ev.Type()))
		return nil
	}

	vv := reflect.ValueOf(v)
	if vv.Type().AssignableTo(ev.Type()) {
		ev.Set(vv)
		return nil
	}
	if ev.Kind() == reflect.Pointer && vv.Type().AssignableTo(ev.Type().Elem()) {
		p := reflect.New(ev.Type().Elem())
		p.Elem().Set(vv)
		ev.Set(p)
		return nil
	}
	return fmt.Errorf("assign: cannot put %T into %T", v, dest)
}

// songRow builds a MockRow scanning like a full song select.
func songRow(s Song) *MockRow {
	return &MockRow{ScanFunc: func(dest ...any) error {
		vals := []any{
			s.ID, s.YouTubeURL, s.VideoID, s.Title, s.ThumbnailURL,
			s.AddedBy, s.AddedByName, s.AddedByAvatar,
			s.Message, s.Position, s.Status, s.PlayedAt, s.CreatedAt,
		}
		if len(dest) != len(vals) {
			return fmt.Errorf("song scan: %d destinations for %d values", len(dest), len(vals))
		}
		for i := range dest {
			if err := assign(dest[i], vals[i]); err != nil {
				return err
			}
		}
		return nil
	}}
}

func songRowValues(s Song) []any {
	return []any{
		s.ID, s.YouTubeURL, s.VideoID, s.Title, s.ThumbnailURL,
		s.AddedBy, s.AddedByName, s.AddedByAvatar,
		s.Message, s.Position, s.Status, s.PlayedAt, s.CreatedAt,
	}
}

// playbackRow builds a MockRow scanning like the playback select.
func playbackRow(pb Playback) *MockRow {
	return &MockRow{ScanFunc: func(dest ...any) error {
		vals := []any{pb.CurrentSongID, pb.StartedAt, pb.UpdatedAt}
		for i := range dest {
			if err := assign(dest[i], vals[i]); err != nil {
				return err
			}
		}
		return nil
	}}
}

// errRow always fails with err (typically pgx.ErrNoRows).
func errRow(err error) *MockRow {
	return &MockRow{ScanFunc: func(dest ...any) error { return err }}
}
