package logsvc

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

func newObservedLogger(t *testing.T) (*RollbarLogger, *observer.ObservedLogs) {
	t.Helper()
	obsCore, logs := observer.New(zapcore.DebugLevel)
	l := NewRollbarLogger(zap.New(obsCore), core.NewTestConfig())
	l.Enable(false)
	return l, logs
}

func TestRollbarLogger_fields(t *testing.T) {
	l, logs := newObservedLogger(t)

	usr := user.User{ID: "u-1", Name: "Jane", Email: "jane@academy.test"}
	err := errors.New("boom")
	l.Error("something failed", err, map[string]interface{}{"registration": "r-1"}, usr)

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "something failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "u-1", ctx["user"])
	assert.Equal(t, "r-1", ctx["registration"])
	assert.Contains(t, ctx, "error")
}

func TestRollbarLogger_levels(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Debug("d")
	l.Info("i")
	l.Warn("w", "extra")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "extra", entries[2].ContextMap()["extra"])
}

func TestRollbarLogger_personPerEntry(t *testing.T) {
	l, _ := newObservedLogger(t)

	personOf := func(args []interface{}) *rollbar.Person {
		for _, arg := range args {
			if ctx, ok := arg.(context.Context); ok {
				if p, ok := rollbar.PersonFromContext(ctx); ok {
					return p
				}
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rArgs, _ := l.prepare("m", []interface{}{user.User{ID: id}, user.User{ID: "ignored"}})
			p := personOf(rArgs)
			if assert.NotNil(t, p) {
				assert.Equal(t, id, p.Id)
			}
		}(fmt.Sprintf("u-%d", i))
	}
	wg.Wait()

	rArgs, _ := l.prepare("anonymous", nil)
	assert.Nil(t, personOf(rArgs))
}
