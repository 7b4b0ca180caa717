package sqlxrepos

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academy/core"
)

type fakeTx struct {
	core.DBTransactor
	rollbackErr error
}

func (tx fakeTx) Rollback() error { return tx.rollbackErr }

type errorCounter struct {
	core.Logger
	errors int
}

func (l *errorCounter) Error(string, ...interface{}) { l.errors++ }

func TestSafeRollback(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantLogged int
	}{
		{name: "rolled back", err: nil},
		{name: "already committed", err: sql.ErrTxDone},
		{name: "failure", err: errors.New("connection reset"), wantLogged: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := new(errorCounter)
			SafeRollback(fakeTx{rollbackErr: tt.err}, logger)
			assert.Equal(t, tt.wantLogged, logger.errors)
		})
	}
}
