package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
	appfs "github.com/trezcool/academy/fs"
	"github.com/trezcool/academy/services/logger"
)

// Logger returns a logger writing to t's output only.
func Logger(t testing.TB) core.Logger {
	l := logsvc.NewRollbarLogger(zaptest.NewLogger(t), core.NewTestConfig())
	l.Enable(false)
	return l
}

// EmailTemplates parses the embedded email templates.
func EmailTemplates(t testing.TB, conf *core.Config) *core.EmailTemplates {
	tmpls, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
	if err != nil {
		t.Fatalf("EmailTemplates() failed: %v", err)
	}
	return tmpls
}

// NopLogger returns a logger that discards everything, for use outside of a test (e.g. in TestMain).
func NopLogger() core.Logger {
	l := logsvc.NewRollbarLogger(zap.NewNop(), core.NewTestConfig())
	l.Enable(false)
	return l
}

// Validator returns a validator with every app validator & translation registered.
func Validator(logger core.Logger) (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)
	return validate, translator
}

func CreateUser(
	t testing.TB,
	repo user.Repository,
	name, email, pwd, role, status string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		AcademyID: core.DefaultAcademyID,
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
