// Package store keeps the quiz tables as ordered rows of text fields.
//
// Every backend follows the same contract: Load of a table that was never
// saved logs the miss and returns an empty collection, and Save replaces the
// whole table.
package store

import "context"

// Table names used by the quiz.
const (
	TableUsers     = "users"
	TableQuestions = "questions"
	TableOptions   = "options"
	TableAttempts  = "attempts"
)

// Store reads and writes whole tables.
type Store interface {
	Load(ctx context.Context, name string) ([][]string, error)
	Save(ctx context.Context, name string, rows [][]string) error
}

// Backend is a Store that holds a connection or file handle.
type Backend interface {
	Store
	Close() error
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
