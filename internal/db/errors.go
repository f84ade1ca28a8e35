package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

var (
	// ErrNotFound is returned for an unknown conversation ID.
	ErrNotFound = errors.New("conversation not found")

	// ErrDuplicate means a conversation ID or message position was written twice.
	ErrDuplicate = errors.New("transcript already archived")

	// ErrConflict is a transaction conflict; the archive write did not happen.
	ErrConflict = errors.New("archive write conflict")
)

// classify maps SurrealDB query errors onto the sentinels above.
func classify(err error) error {
	var qe *surrealdb.QueryError
	if !errors.As(err, &qe) {
		return err
	}
	switch msg := qe.Message; {
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "already contains"):
		return fmt.Errorf("%w: %s", ErrDuplicate, msg)
	case strings.Contains(msg, "Transaction conflict"):
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return err
}
