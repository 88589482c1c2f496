// Package dbtest contiene fakes de pgx para testear repositorios sin una base real.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call registra una consulta recibida por el fake.
type Call struct {
	Query string
	Args  []any
}

// FakeDB implementa db.Querier. Cada FnX decide la respuesta; si es nil, devuelve error.
type FakeDB struct {
	QueryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	QueryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	ExecFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	mu    sync.Mutex
	calls []Call
}

func (db *FakeDB) record(sql string, args []any) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.calls = append(db.calls, Call{Query: sql, Args: args})
}

// Calls devuelve las consultas recibidas, en orden.
func (db *FakeDB) Calls() []Call {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Call(nil), db.calls...)
}

// LastCall devuelve la última consulta recibida.
func (db *FakeDB) LastCall() Call {
	calls := db.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

func (db *FakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.record(sql, args)
	if db.QueryRowFn == nil {
		return &FakeRow{Err: errors.New("unexpected QueryRow call")}
	}
	return db.QueryRowFn(ctx, sql, args...)
}

func (db *FakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.record(sql, args)
	if db.QueryFn == nil {
		return nil, errors.New("unexpected Query call")
	}
	return db.QueryFn(ctx, sql, args...)
}

func (db *FakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.record(sql, args)
	if db.ExecFn == nil {
		return pgconn.CommandTag{}, errors.New("unexpected Exec call")
	}
	return db.ExecFn(ctx, sql, args...)
}

// FakeRow devuelve Values en Scan, o Err si está seteado.
type FakeRow struct {
	Values []any
	Err    error
}

func (row *FakeRow) Scan(dest ...any) error {
	if row.Err != nil {
		return row.Err
	}
	return assignValues(dest, row.Values)
}

// FakeRows itera Rows; RowsErr se devuelve desde Err() y ScanErr desde Scan.
type FakeRows struct {
	Rows    [][]any
	RowsErr error
	ScanErr error

	idx    int
	closed bool
}

// Closed indica si el repositorio cerró las filas.
func (rows *FakeRows) Closed() bool {
	return rows.closed
}

func (rows *FakeRows) Close() {
	rows.closed = true
}

func (rows *FakeRows) Err() error {
	return rows.RowsErr
}

func (rows *FakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}

func (rows *FakeRows) FieldDescriptions() []pgconn.FieldDescription {
	return nil
}

func (rows *FakeRows) Next() bool {
	if rows.closed {
		return false
	}
	if rows.idx >= len(rows.Rows) {
		rows.closed = true
		return false
	}
	rows.idx++
	return true
}

func (rows *FakeRows) Scan(dest ...any) error {
	if rows.ScanErr != nil {
		return rows.ScanErr
	}
	if rows.idx == 0 || rows.idx > len(rows.Rows) {
		return errors.New("scan called without next")
	}
	return assignValues(dest, rows.Rows[rows.idx-1])
}

func (rows *FakeRows) Values() ([]any, error) {
	return nil, errors.New("not implemented")
}

func (rows *FakeRows) RawValues() [][]byte {
	return nil
}

func (rows *FakeRows) Conn() *pgx.Conn {
	return nil
}

// NormalizeSQL colapsa espacios para comparar consultas.
func NormalizeSQL(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func assignValues(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("dest len %d does not match values len %d", len(dest), len(values))
	}
	for i, d := range dest {
		if d == nil {
			continue
		}
		if err := assignValue(d, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func assignValue(dest any, value any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr {
		return fmt.Errorf("dest is not pointer")
	}
	if value == nil {
		destValue.Elem().Set(reflect.Zero(destValue.Elem().Type()))
		return nil
	}
	valueValue := reflect.ValueOf(value)
	destElem := destValue.Elem()
	if destElem.Kind() == reflect.Ptr {
		ptrValue := reflect.New(destElem.Type().Elem())
		ptrValue.Elem().Set(valueValue.Convert(destElem.Type().Elem()))
		destElem.Set(ptrValue)
		return nil
	}
	destElem.Set(valueValue.Convert(destElem.Type()))
	return nil
}
