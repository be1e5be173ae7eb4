package postgresql

import (
	"context"
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository"
)

type AuditRepo struct {
	db db.DB
}

func NewAuditRepo(db db.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// CreateBatch stores all entries in one transaction.
func (r *AuditRepo) CreateBatch(ctx context.Context, entries []*repository.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.InTx(ctx, r.db, func(tx db.Tx) error {
		for _, e := range entries {
			_, err := tx.Exec(ctx, `
                INSERT INTO operator_audit (
                    logged_at, operator, method, path, action, status_code, order_id, request, response
                ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            `, e.LoggedAt, e.Operator, e.Method, e.Path, e.Action, e.StatusCode, e.OrderID, e.Request, e.Response)
			if err != nil {
				return fmt.Errorf("failed to insert audit entry: %w", err)
			}
		}
		return nil
	})
}
