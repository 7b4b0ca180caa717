package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/player"
)

const playerColumns = `id, academy_id, parent_id, name, date_of_birth, age_group, medical_notes, created_at, updated_at`

type playerRepository struct {
	db core.DB
}

var _ player.Repository = (*playerRepository)(nil)

func NewPlayerRepository(db core.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (repo *playerRepository) CreatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	q := `INSERT INTO players (` + playerColumns + `)
		VALUES (:id, :academy_id, :parent_id, :name, :date_of_birth, :age_group, :medical_notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, p); err != nil {
		return player.Player{}, errors.Wrap(err, "inserting player")
	}
	return p, nil
}

func (repo *playerRepository) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	if _, err := uuid.Parse(id); err != nil {
		return player.Player{}, player.ErrNotFound
	}
	var p player.Player
	q := repo.db.Rebind(`SELECT ` + playerColumns + ` FROM players WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &p, q, id); err != nil {
		return player.Player{}, trapNoRows(err, player.ErrNotFound, "finding player")
	}
	return p, nil
}

func (repo *playerRepository) QueryPlayers(ctx context.Context, filter player.QueryFilter) ([]player.Player, error) {
	w := new(where)
	if filter.AcademyID != "" {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if filter.ParentID != "" {
		if _, err := uuid.Parse(filter.ParentID); err != nil {
			return []player.Player{}, nil
		}
		w.add("parent_id = ?", filter.ParentID)
	}
	if filter.AgeGroup != "" {
		w.add("age_group = ?", filter.AgeGroup)
	}

	q, args, err := w.build(repo.db, `SELECT `+playerColumns+` FROM players`, "ORDER BY lower(name) ASC, id ASC")
	if err != nil {
		return nil, errors.Wrap(err, "building players query")
	}
	players := make([]player.Player, 0)
	if err = repo.db.SelectContext(ctx, &players, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying players")
	}
	return players, nil
}

func (repo *playerRepository) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	q := `UPDATE players SET parent_id = :parent_id, name = :name, date_of_birth = :date_of_birth,
		age_group = :age_group, medical_notes = :medical_notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, p)
	if err != nil {
		return player.Player{}, errors.Wrap(err, "updating player")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return player.Player{}, player.ErrNotFound
	}
	return p, nil
}
