package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/academy/core/player"
)

type playerRepository struct {
	db *DB
}

var _ player.Repository = (*playerRepository)(nil)

func NewPlayerRepository(db *DB) *playerRepository {
	return &playerRepository{db: db}
}

func (repo *playerRepository) CreatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	t := repo.db.players
	t.Lock()
	defer t.Unlock()

	t.table[p.ID] = p
	return p, nil
}

func (repo *playerRepository) GetPlayer(_ context.Context, id string) (player.Player, error) {
	t := repo.db.players
	t.RLock()
	defer t.RUnlock()

	if p, ok := t.table[id]; ok {
		return p, nil
	}
	return player.Player{}, player.ErrNotFound
}

func (repo *playerRepository) QueryPlayers(_ context.Context, filter player.QueryFilter) ([]player.Player, error) {
	t := repo.db.players
	t.RLock()
	defer t.RUnlock()

	players := make([]player.Player, 0, len(t.table))
	for _, p := range t.table {
		if filter.AcademyID != "" && p.AcademyID != filter.AcademyID {
			continue
		}
		if filter.ParentID != "" && p.ParentID != filter.ParentID {
			continue
		}
		if filter.AgeGroup != "" && p.AgeGroup != filter.AgeGroup {
			continue
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		ni, nj := strings.ToLower(players[i].Name), strings.ToLower(players[j].Name)
		if ni == nj {
			return players[i].ID < players[j].ID
		}
		return ni < nj
	})
	return players, nil
}

func (repo *playerRepository) UpdatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	t := repo.db.players
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[p.ID]; !ok {
		return player.Player{}, player.ErrNotFound
	}
	t.table[p.ID] = p
	return p, nil
}
