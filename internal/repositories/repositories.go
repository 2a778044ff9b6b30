// package repositories stores listeners, mood requests, connected playlists and track history in sqlite
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/moodplay/internal/shared"
)

// NextSequence bumps the counter in table's "<table>_sequence" row and returns the new value.
//
// Sequences order rows for listing; they are never shown to the listener.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// expectAffected returns [shared.ErrRecordNotFound] when result touched no rows.
func expectAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, entity, id)
	}
	return nil
}
