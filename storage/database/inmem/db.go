package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/academy"
	"github.com/trezcool/academy/core/payment"
	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/registration"
	"github.com/trezcool/academy/core/schedule"
	"github.com/trezcool/academy/core/user"
)

// DB is a process-local store used when no database is configured, and by tests.
// Each table is guarded by its own lock.
type (
	DB struct {
		academies     *academyTable
		users         *userTable
		registrations *registrationTable
		sessions      *sessionTable
		players       *playerTable
		payments      *paymentTable
	}

	academyTable struct {
		sync.RWMutex
		table map[string]academy.Academy
	}

	userTable struct {
		sync.RWMutex
		table map[string]user.User
	}

	registrationTable struct {
		sync.RWMutex
		table map[string]registration.Registration
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]schedule.Session
	}

	playerTable struct {
		sync.RWMutex
		table map[string]player.Player
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]payment.Payment
	}
)

// Open returns an empty DB holding only the default academy.
func Open() *DB {
	db := &DB{
		academies:     &academyTable{table: make(map[string]academy.Academy)},
		users:         &userTable{table: make(map[string]user.User)},
		registrations: &registrationTable{table: make(map[string]registration.Registration)},
		sessions:      &sessionTable{table: make(map[string]schedule.Session)},
		players:       &playerTable{table: make(map[string]player.Player)},
		payments:      &paymentTable{table: make(map[string]payment.Payment)},
	}
	db.academies.table[core.DefaultAcademyID] = academy.Academy{
		ID:        core.DefaultAcademyID,
		Name:      "Default Academy",
		Slug:      "default",
		CreatedAt: time.Now().UTC(),
	}
	return db
}

// PingContext always succeeds.
func (db *DB) PingContext(context.Context) error {
	return nil
}

// Reset empties every table, then re-seeds the default academy.
func (db *DB) Reset() {
	*db = *Open()
}
