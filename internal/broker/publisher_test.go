package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mock_broker "gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/broker/mocks"
	mock_database "gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type publisherFixture struct {
	db       *mock_database.MockDB
	tx       *mock_database.MockTx
	repo     *mock_broker.MockOutboxTaskRepository
	producer *mock_broker.MockProducer
	pub      *Publisher
}

func newPublisherFixture(t *testing.T) *publisherFixture {
	ctrl := gomock.NewController(t)
	f := &publisherFixture{
		db:       mock_database.NewMockDB(ctrl),
		tx:       mock_database.NewMockTx(ctrl),
		repo:     mock_broker.NewMockOutboxTaskRepository(ctrl),
		producer: mock_broker.NewMockProducer(ctrl),
	}
	f.pub = NewPublisher(f.db, f.repo, f.producer, PublisherConfig{PollInterval: 10 * time.Millisecond, BatchSize: 2, MaxAttempts: 3}, zap.NewNop())
	return f
}

func (f *publisherFixture) claim(tasks ...*repository.OutboxTask) {
	f.db.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
	f.repo.EXPECT().GetProcessableTasks(gomock.Any(), f.tx, 2).Return(tasks, nil)
	for _, task := range tasks {
		f.repo.EXPECT().UpdateTaskStatusTx(gomock.Any(), f.tx, task.ID, repository.TaskStatusProcessing, task.Attempts, gomock.Nil(), gomock.Nil()).Return(nil)
	}
	f.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
}

func task(attempts int) *repository.OutboxTask {
	return &repository.OutboxTask{
		ID:       uuid.New(),
		Topic:    repository.TopicOrderDecisions,
		Payload:  json.RawMessage(`{"order_id":"O1","kind":"accepted"}`),
		Attempts: attempts,
	}
}

func TestPublisher_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("sends and marks done", func(t *testing.T) {
		f := newPublisherFixture(t)
		tk := task(0)
		f.claim(tk)

		f.producer.EXPECT().SendMessage(gomock.Any(), repository.TopicOrderDecisions, []byte(tk.ID.String()), []byte(tk.Payload)).Return(nil)
		f.repo.EXPECT().UpdateTaskStatus(gomock.Any(), f.db, tk.ID, repository.TaskStatusDone, 0, gomock.Nil(), gomock.Not(gomock.Nil())).Return(nil)

		require.NoError(t, f.pub.processBatch(ctx))
	})

	t.Run("send failure marks failed with attempt", func(t *testing.T) {
		f := newPublisherFixture(t)
		tk := task(1)
		f.claim(tk)

		f.producer.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
		f.repo.EXPECT().UpdateTaskStatus(gomock.Any(), f.db, tk.ID, repository.TaskStatusFailed, 2, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ any, _ uuid.UUID, _ repository.TaskStatus, _ int, lastError *string, _ *time.Time) error {
				require.NotNil(t, lastError)
				assert.Equal(t, "broker down", *lastError)
				return nil
			})

		require.NoError(t, f.pub.processBatch(ctx))
	})

	t.Run("nothing to do", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.claim()
		require.NoError(t, f.pub.processBatch(ctx))
	})

	t.Run("claim failure", func(t *testing.T) {
		f := newPublisherFixture(t)
		expectedErr := errors.New("database error")
		f.db.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil)
		f.repo.EXPECT().GetProcessableTasks(gomock.Any(), f.tx, 2).Return(nil, expectedErr)
		f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		assert.ErrorIs(t, f.pub.processBatch(ctx), expectedErr)
	})

	t.Run("stops after shutdown", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.claim(task(0), task(0))
		f.producer.EXPECT().Close().Return(nil)

		f.pub.Shutdown(ctx)
		assert.ErrorIs(t, f.pub.processBatch(ctx), errShutdown)
	})
}

func TestPublisher_Run(t *testing.T) {
	f := newPublisherFixture(t)
	f.db.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil).AnyTimes()
	f.repo.EXPECT().GetProcessableTasks(gomock.Any(), f.tx, 2).Return(nil, nil).AnyTimes()
	f.tx.EXPECT().Commit(gomock.Any()).Return(nil).AnyTimes()
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	f.producer.EXPECT().Close().Return(nil)

	done := make(chan struct{})
	go func() {
		f.pub.Run(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	f.pub.Shutdown(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestPublisher_Shutdown(t *testing.T) {
	f := newPublisherFixture(t)
	f.producer.EXPECT().Close().Return(nil).Times(1)

	f.pub.Shutdown(context.Background())
	f.pub.Shutdown(context.Background())
}

func TestAMQPProducer_Close(t *testing.T) {
	p := &AMQPProducer{}
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

func TestConsoleProducer(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProducer(&buf)

	require.NoError(t, p.SendMessage(context.Background(), "order_decisions", []byte("k1"), []byte(`{"a":1}`)))
	assert.Contains(t, buf.String(), "order_decisions")
	assert.Contains(t, buf.String(), `Value: {"a":1}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.SendMessage(ctx, "t", nil, nil), context.Canceled)
	assert.NoError(t, p.Close())
}
