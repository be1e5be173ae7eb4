package postgresql

import (
	"context"
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository"
)

type DecisionRepo struct {
	db db.DB
}

func NewDecisionRepo(db db.DB) *DecisionRepo {
	return &DecisionRepo{db: db}
}

func (r *DecisionRepo) CreateTx(ctx context.Context, tx db.Tx, d *repository.Decision) error {
	err := tx.Get(ctx, &d.ID, `
        INSERT INTO order_decisions (
            restaurant_id, order_id, backend_id, kind, prep_minutes, reason, automatic, decided_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, d.RestaurantID, d.OrderID, d.BackendID, d.Kind, d.PrepMinutes, d.Reason, d.Automatic, d.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to insert decision for order %s: %w", d.OrderID, err)
	}
	return nil
}

// ListRecent returns up to limit decisions, newest first.
func (r *DecisionRepo) ListRecent(ctx context.Context, limit int) ([]*repository.Decision, error) {
	var decisions []*repository.Decision
	err := r.db.Select(ctx, &decisions, `
        SELECT id, restaurant_id, order_id, backend_id, kind, prep_minutes, reason, automatic, decided_at
        FROM order_decisions
        ORDER BY decided_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

func (r *DecisionRepo) GetByOrderID(ctx context.Context, orderID string) (*repository.Decision, error) {
	var decisions []*repository.Decision
	err := r.db.Select(ctx, &decisions, `
        SELECT id, restaurant_id, order_id, backend_id, kind, prep_minutes, reason, automatic, decided_at
        FROM order_decisions
        WHERE order_id = $1
        ORDER BY decided_at DESC
        LIMIT 1
    `, orderID)
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return nil, repository.ErrObjectNotFound
	}
	return decisions[0], nil
}
