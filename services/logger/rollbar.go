package logsvc

import (
	"context"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

// RollbarLogger reports to Rollbar and writes every entry to a local zap logger.
type RollbarLogger struct {
	local *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(local *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{local: local.Sugar()}
}

// NewLocalLogger builds the zap logger backing RollbarLogger: human readable in debug, JSON otherwise.
func NewLocalLogger(conf *core.Config) (*zap.Logger, error) {
	if conf.TestMode {
		return zap.NewNop(), nil
	}
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes both sinks.
func (l *RollbarLogger) Sync() {
	rollbar.Wait()
	_ = l.local.Sync()
}

// expected fmt: msg | error, map[string]interface{}, user.User
// The first User is attached to the item through its context, so concurrent entries never share a person.
func (l *RollbarLogger) prepare(msg string, args []interface{}) (rollbarArgs, fields []interface{}) {
	var usrSet bool
	rollbarArgs = make([]interface{}, 0, len(args)+2)
	rollbarArgs = append(rollbarArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if !usrSet { // only set one User
				person := &rollbar.Person{Id: a.ID, Username: a.Name, Email: a.Email}
				rollbarArgs = append(rollbarArgs, rollbar.NewPersonContext(context.Background(), person))
				fields = append(fields, "user", a.ID)
				usrSet = true
			}
		case error:
			rollbarArgs = append(rollbarArgs, a)
			fields = append(fields, "error", a)
		case map[string]interface{}:
			rollbarArgs = append(rollbarArgs, a)
			for k, v := range a {
				fields = append(fields, k, v)
			}
		default:
			rollbarArgs = append(rollbarArgs, a)
			fields = append(fields, "extra", a)
		}
	}
	return rollbarArgs, fields
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Debug(rArgs...)
	l.local.Debugw(msg, fields...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Info(rArgs...)
	l.local.Infow(msg, fields...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Warning(rArgs...)
	l.local.Warnw(msg, fields...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Error(rArgs...)
	l.local.Errorw(msg, fields...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Critical(rArgs...)
	rollbar.Wait()
	l.local.Fatalw(msg, fields...)
}
