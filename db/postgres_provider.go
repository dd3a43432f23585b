package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
)

const DefaultPostgresTable = "kv_store"

// PostgresProvider keeps the key space in a single two-column table. Snapshots are
// read-only REPEATABLE READ transactions.
type PostgresProvider struct {
	once  sync.Once
	db    *sql.DB
	table string
}

// NewPostgresProvider connects with dsn and creates table if needed. An empty
// table name selects DefaultPostgresTable.
func NewPostgresProvider(dsn, table string) (DatabaseProvider, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	p, err := NewPostgresProviderFromDB(conn, table)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func NewPostgresProviderFromDB(conn *sql.DB, table string) (*PostgresProvider, error) {
	if table == "" {
		table = DefaultPostgresTable
	}
	p := &PostgresProvider{db: conn, table: pq.QuoteIdentifier(table)}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (k BYTEA PRIMARY KEY, v BYTEA NOT NULL)`, p.table)
	if _, err := conn.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return p, nil
}

type sqlQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	return postgresGet(p.db, p.table, key)
}

func (p *PostgresProvider) Has(key []byte) (bool, error) {
	v, err := postgresGet(p.db, p.table, key)
	return v != nil, err
}

func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(p.upsertQuery(), key, value)
	if err != nil {
		return fmt.Errorf("failed to put key: %w", err)
	}
	return nil
}

func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(p.deleteQuery(), key)
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (p *PostgresProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return postgresIterate(p.db, p.table, prefix, callback)
}

func (p *PostgresProvider) Batch() DatabaseBatch {
	return &PostgresBatch{provider: p}
}

func (p *PostgresProvider) Snapshot() (DatabaseSnapshot, error) {
	tx, err := p.db.BeginTx(context.Background(), &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	// The snapshot is taken by the first statement, not by BEGIN.
	if _, err := tx.Exec(`SELECT 1`); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to pin snapshot: %w", err)
	}
	return &postgresSnapshot{tx: tx, table: p.table}, nil
}

func (p *PostgresProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

func (p *PostgresProvider) upsertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`, p.table)
}

func (p *PostgresProvider) deleteQuery() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE k = $1`, p.table)
}

type postgresSnapshot struct {
	tx    *sql.Tx
	table string
}

func (s *postgresSnapshot) Get(key []byte) ([]byte, error) {
	return postgresGet(s.tx, s.table, key)
}

func (s *postgresSnapshot) Has(key []byte) (bool, error) {
	v, err := postgresGet(s.tx, s.table, key)
	return v != nil, err
}

func (s *postgresSnapshot) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return postgresIterate(s.tx, s.table, prefix, callback)
}

func (s *postgresSnapshot) Release() {
	_ = s.tx.Rollback()
}

func postgresGet(q sqlQuerier, table string, key []byte) ([]byte, error) {
	var value []byte
	err := q.QueryRow(fmt.Sprintf(`SELECT v FROM %s WHERE k = $1`, table), key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func postgresIterate(q sqlQuerier, table string, prefix []byte, callback func(key, value []byte) bool) error {
	var (
		rows *sql.Rows
		err  error
	)
	if upper := prefixUpperBound(prefix); upper != nil {
		rows, err = q.Query(fmt.Sprintf(`SELECT k, v FROM %s WHERE k >= $1 AND k < $2 ORDER BY k`, table), prefix, upper)
	} else {
		rows, err = q.Query(fmt.Sprintf(`SELECT k, v FROM %s WHERE k >= $1 ORDER BY k`, table), prefix)
	}
	if err != nil {
		return fmt.Errorf("failed to iterate prefix: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		if !callback(k, v) {
			break
		}
	}
	return rows.Err()
}

type postgresOp struct {
	key    []byte
	value  []byte
	delete bool
}

// PostgresBatch buffers writes and applies them in one transaction on Write.
type PostgresBatch struct {
	provider *PostgresProvider
	ops      []postgresOp
}

func (b *PostgresBatch) Put(key, value []byte) {
	b.ops = append(b.ops, postgresOp{key: copyBytes(key), value: copyBytes(value)})
}

func (b *PostgresBatch) Delete(key []byte) {
	b.ops = append(b.ops, postgresOp{key: copyBytes(key), delete: true})
}

func (b *PostgresBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	tx, err := b.provider.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	upsert, del := b.provider.upsertQuery(), b.provider.deleteQuery()
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(del, op.key)
		} else {
			_, err = tx.Exec(upsert, op.key, op.value)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (b *PostgresBatch) Reset() {
	b.ops = b.ops[:0]
}

func (b *PostgresBatch) Close() error {
	b.ops = nil
	return nil
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
