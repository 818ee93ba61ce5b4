package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo directorio de usuarios sobre SQLite.
type ProfileRepo struct {
	q Querier
}

func NewProfileRepository(q Querier) *ProfileRepo { return &ProfileRepo{q: q} }

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var p entity.Profile
	err := r.q.QueryRowContext(ctx, `SELECT id, name, email FROM profiles WHERE id = ?`, id).Scan(&p.ID, &p.Name, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) List(ctx context.Context) ([]*entity.Profile, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, email FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Profile, 0)
	for rows.Next() {
		var p entity.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Upsert alta o actualización de un perfil (seed).
func (r *ProfileRepo) Upsert(ctx context.Context, p *entity.Profile) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		p.ID, p.Name, p.Email)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
