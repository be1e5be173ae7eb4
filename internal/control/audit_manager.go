//go:generate mockgen -source ./audit_manager.go -destination=./mocks/audit_manager.go -package=mock_control
package control

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"go.uber.org/zap"
)

const sinkTimeout = 5 * time.Second

// AuditSink stores a batch of operator audit entries.
type AuditSink interface {
	WriteAudit(ctx context.Context, entries []model.AuditEntry) error
}

// LogSink writes audit batches to the structured log.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) WriteAudit(_ context.Context, entries []model.AuditEntry) error {
	for _, e := range entries {
		s.Logger.Info("operator audit",
			zap.String("operator", e.Operator),
			zap.String("action", e.Action),
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.Int("status_code", e.StatusCode),
			zap.String("order_id", e.OrderID),
		)
	}
	return nil
}

// AuditManager batches entries by size or age and hands each batch to a
// worker that writes it to the sink.
type AuditManager struct {
	workerCount int
	batchSize   int
	timeout     time.Duration
	sink        AuditSink
	logger      *zap.Logger

	inputChan  chan model.AuditEntry
	batchChan  chan []model.AuditEntry
	shutdownCh chan struct{}
	once       sync.Once

	wg           sync.WaitGroup
	pendingMu    sync.Mutex
	pendingCount int
}

func NewAuditManager(workerCount, batchSize int, timeout time.Duration, sink AuditSink, logger *zap.Logger) *AuditManager {
	if workerCount <= 0 {
		workerCount = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "audit"))
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	return &AuditManager{
		workerCount: workerCount,
		batchSize:   batchSize,
		timeout:     timeout,
		sink:        sink,
		logger:      logger,
		inputChan:   make(chan model.AuditEntry, workerCount*batchSize*2),
		batchChan:   make(chan []model.AuditEntry, workerCount*2),
		shutdownCh:  make(chan struct{}),
	}
}

func (m *AuditManager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.runAggregator(ctx)

	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(i)
	}
}

// Shutdown flushes what was collected and waits for the workers.
func (m *AuditManager) Shutdown(ctx context.Context) {
	m.once.Do(func() {
		close(m.shutdownCh)

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			m.logger.Debug("audit manager stopped")
		case <-ctx.Done():
			m.logger.Warn("audit manager shutdown interrupted", zap.Int("pending", m.Pending()))
		}
	})
}

func (m *AuditManager) LogEntry(ctx context.Context, entry model.AuditEntry) {
	m.updatePendingCount(1)

	select {
	case <-m.shutdownCh:
		m.writeDirect([]model.AuditEntry{entry})
		return
	default:
	}

	select {
	case m.inputChan <- entry:
	case <-m.shutdownCh:
		m.writeDirect([]model.AuditEntry{entry})
	case <-ctx.Done():
		m.writeDirect([]model.AuditEntry{entry})
	}
}

func (m *AuditManager) Pending() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return m.pendingCount
}

func (m *AuditManager) runAggregator(ctx context.Context) {
	defer m.wg.Done()

	var (
		batch    []model.AuditEntry
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	drain:
		for {
			select {
			case entry := <-m.inputChan:
				batch = append(batch, entry)
			default:
				break drain
			}
		}
		if len(batch) > 0 {
			m.dispatchBatch(batch)
		}
		close(m.batchChan)
	}()

	for {
		select {
		case entry := <-m.inputChan:
			batch = append(batch, entry)
			if len(batch) >= m.batchSize {
				m.dispatchBatch(batch)
				batch = nil
				timeoutC = nil
			} else if len(batch) == 1 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(m.timeout)
				timeoutC = timer.C
			}

		case <-timeoutC:
			m.dispatchBatch(batch)
			batch = nil
			timeoutC = nil

		case <-ctx.Done():
			return

		case <-m.shutdownCh:
			return
		}
	}
}

func (m *AuditManager) dispatchBatch(batch []model.AuditEntry) {
	if len(batch) == 0 {
		return
	}
	batchCopy := make([]model.AuditEntry, len(batch))
	copy(batchCopy, batch)

	select {
	case m.batchChan <- batchCopy:
	default:
		m.writeDirect(batchCopy)
	}
}

func (m *AuditManager) runWorker(id int) {
	defer m.wg.Done()

	for batch := range m.batchChan {
		m.write(id, batch)
	}
}

func (m *AuditManager) writeDirect(batch []model.AuditEntry) {
	m.write(-1, batch)
}

func (m *AuditManager) write(workerID int, batch []model.AuditEntry) {
	defer m.updatePendingCount(-len(batch))

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := m.sink.WriteAudit(ctx, batch); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("write_audit").Inc()
		raw, _ := json.Marshal(batch)
		m.logger.Error("audit batch lost", zap.Int("worker", workerID), zap.Error(err), zap.ByteString("batch", raw))
	}
}

func (m *AuditManager) updatePendingCount(delta int) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	m.pendingCount += delta
}
