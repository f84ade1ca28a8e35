package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record exists", &surrealdb.QueryError{Message: "Database record `conversation:x` already exists"}, ErrDuplicate},
		{"unique index", &surrealdb.QueryError{Message: "Database index `message_position` already contains [conversation:x, 0]"}, ErrDuplicate},
		{"conflict", &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection closed")
	assert.Same(t, plain, classify(plain))

	other := &surrealdb.QueryError{Message: "Parse error"}
	assert.Equal(t, error(other), classify(other))
}
