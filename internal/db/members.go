package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// GetMember fetches an active member by id.
func (q *Queries) GetMember(ctx context.Context, id pgtype.UUID) (Member, error) {
	var m Member
	err := q.db.QueryRow(ctx, `
		SELECT id, code, name, discount_percent, active, created_at
		FROM members WHERE id = $1 AND active`, id).
		Scan(&m.ID, &m.Code, &m.Name, &m.DiscountPercent, &m.Active, &m.CreatedAt)
	return m, err
}
