//go:generate mockgen -source ./journal.go -destination=./mocks/journal.go -package=mock_journal
package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository"
	"go.uber.org/zap"
)

type DecisionRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, d *repository.Decision) error
	ListRecent(ctx context.Context, limit int) ([]*repository.Decision, error)
}

type OutboxWriter interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

type AuditRepository interface {
	CreateBatch(ctx context.Context, entries []*repository.AuditEntry) error
}

// Journal persists confirmed decisions together with the outbox task that
// announces them, and the operator audit trail.
type Journal struct {
	db        db.DB
	decisions DecisionRepository
	outbox    OutboxWriter
	audit     AuditRepository
	topic     string
	logger    *zap.Logger
}

func New(database db.DB, decisions DecisionRepository, outbox OutboxWriter, audit AuditRepository, topic string, logger *zap.Logger) *Journal {
	if topic == "" {
		topic = repository.TopicOrderDecisions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{
		db:        database,
		decisions: decisions,
		outbox:    outbox,
		audit:     audit,
		topic:     topic,
		logger:    logger.With(zap.String("component", "journal")),
	}
}

func (j *Journal) RecordDecision(ctx context.Context, d model.Decision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}

	err = db.InTx(ctx, j.db, func(tx db.Tx) error {
		if err := j.decisions.CreateTx(ctx, tx, repository.DecisionFromModel(d)); err != nil {
			return err
		}
		return j.outbox.CreateTx(ctx, tx, &repository.OutboxTask{Topic: j.topic, Payload: payload})
	})
	if err != nil {
		return fmt.Errorf("record decision for order %s: %w", d.OrderID, err)
	}
	j.logger.Debug("decision recorded", zap.String("order_id", d.OrderID), zap.String("kind", string(d.Kind)))
	return nil
}

func (j *Journal) ListRecentDecisions(ctx context.Context, limit int) ([]model.Decision, error) {
	rows, err := j.decisions.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent decisions: %w", err)
	}
	out := make([]model.Decision, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Model())
	}
	return out, nil
}

func (j *Journal) WriteAudit(ctx context.Context, entries []model.AuditEntry) error {
	rows := make([]*repository.AuditEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, repository.AuditFromModel(e))
	}
	if err := j.audit.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("write audit batch: %w", err)
	}
	return nil
}
