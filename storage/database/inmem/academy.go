package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/academy/core/academy"
)

type academyRepository struct {
	db *DB
}

var _ academy.Repository = (*academyRepository)(nil)

func NewAcademyRepository(db *DB) *academyRepository {
	return &academyRepository{db: db}
}

func (repo *academyRepository) CreateAcademy(_ context.Context, a academy.Academy) (academy.Academy, error) {
	t := repo.db.academies
	t.Lock()
	defer t.Unlock()

	for _, existing := range t.table {
		if existing.Slug == a.Slug {
			return academy.Academy{}, academy.ErrSlugExists
		}
	}
	t.table[a.ID] = a
	return a, nil
}

func (repo *academyRepository) GetAcademy(_ context.Context, id string) (academy.Academy, error) {
	t := repo.db.academies
	t.RLock()
	defer t.RUnlock()

	if a, ok := t.table[id]; ok {
		return a, nil
	}
	return academy.Academy{}, academy.ErrNotFound
}

func (repo *academyRepository) QueryAcademies(context.Context) ([]academy.Academy, error) {
	t := repo.db.academies
	t.RLock()
	defer t.RUnlock()

	academies := make([]academy.Academy, 0, len(t.table))
	for _, a := range t.table {
		academies = append(academies, a)
	}
	sort.Slice(academies, func(i, j int) bool { return academies[i].Name < academies[j].Name })
	return academies, nil
}
