package auth

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockDB implements DB for handler tests.
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
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

// MockRows implements the pgx.Rows surface the handlers touch.
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
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockRows) Close()     {}
func (m *MockRows) Err() error { return nil }

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
	if !vv.Type().AssignableTo(ev.Type()) {
		return fmt.Errorf("assign: cannot put %T into %T", v, dest)
	}
	ev.Set(vv)
	return nil
}

// userRow builds a MockRow scanning like a userColumns select.
func userRow(u User) *MockRow {
	return &MockRow{ScanFunc: func(dest ...any) error {
		vals := []any{u.ID, u.Name, u.Username, u.AvatarURL, u.IsAdmin, u.SessionID, u.CreatedAt}
		for i := range dest {
			if err := assign(dest[i], vals[i]); err != nil {
				return err
			}
		}
		return nil
	}}
}

// loginRow is userRow plus the trailing password_hash column.
func loginRow(u User, passwordHash string) *MockRow {
	return &MockRow{ScanFunc: func(dest ...any) error {
		vals := []any{u.ID, u.Name, u.Username, u.AvatarURL, u.IsAdmin, u.SessionID, u.CreatedAt, passwordHash}
		for i := range dest {
			if err := assign(dest[i], vals[i]); err != nil {
				return err
			}
		}
		return nil
	}}
}

func errRow(err error) *MockRow {
	return &MockRow{ScanFunc: func(dest ...any) error { return err }}
}
