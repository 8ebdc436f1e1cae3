package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// SQLStore keeps every table in one rows table keyed by (table_name, pos).
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens sqlite or postgres and ensures the schema exists.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var drvName string
	switch driver {
	case "sqlite":
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:quiz.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case "postgres":
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/quiz?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error ensuring schema: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// Both drivers accept this DDL.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS tabular_tables (
  table_name TEXT PRIMARY KEY,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS tabular_rows (
  table_name TEXT NOT NULL,
  pos INTEGER NOT NULL,
  fields_json TEXT NOT NULL,
  PRIMARY KEY (table_name, pos)
);
`

func (s *SQLStore) Load(ctx context.Context, name string) ([][]string, error) {
	var exist int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tabular_tables WHERE table_name=$1`, name).Scan(&exist)
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("Error: table %s not found.", name)
		return [][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up table %s: %w", name, err)
	}

	rs, err := s.db.QueryContext(ctx, `SELECT fields_json FROM tabular_rows WHERE table_name=$1 ORDER BY pos`, name)
	if err != nil {
		return nil, fmt.Errorf("error loading table %s: %w", name, err)
	}
	defer rs.Close()

	rows := [][]string{}
	for rs.Next() {
		var raw string
		if err := rs.Scan(&raw); err != nil {
			return nil, err
		}
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("error decoding row of %s: %w", name, err)
		}
		rows = append(rows, fields)
	}
	return rows, rs.Err()
}

func (s *SQLStore) Save(ctx context.Context, name string, rows [][]string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tabular_rows WHERE table_name=$1`, name); err != nil {
		return fmt.Errorf("error clearing table %s: %w", name, err)
	}
	for i, r := range rows {
		buf, jerr := json.Marshal(r)
		if jerr != nil {
			return jerr
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO tabular_rows (table_name,pos,fields_json) VALUES ($1,$2,$3)`,
			name, i, string(buf)); err != nil {
			return fmt.Errorf("error writing row %d of %s: %w", i, name, err)
		}
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO tabular_tables (table_name,updated_at) VALUES ($1,$2)
		ON CONFLICT (table_name) DO UPDATE SET updated_at=EXCLUDED.updated_at`,
		name, time.Now().Unix())
	return err
}

func (s *SQLStore) Close() error { return s.db.Close() }
