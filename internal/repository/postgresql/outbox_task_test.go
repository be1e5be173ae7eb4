package postgresql_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mock_database "gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository/postgresql"
	"go.uber.org/mock/gomock"
)

func TestOutboxTaskRepo_CreateTx(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewOutboxTaskRepo(5)

	task := &repository.OutboxTask{Topic: repository.TopicOrderDecisions, Payload: json.RawMessage(`{"order_id":"O1"}`)}
	mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(repository.TaskStatusCreated), gomock.Any(), gomock.Eq(repository.TopicOrderDecisions), gomock.Any(), gomock.Any()).
		Return(pgconn.CommandTag("INSERT 0 1"), nil)

	require.NoError(t, repo.CreateTx(ctx, mockTx, task))
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, repository.TaskStatusCreated, task.Status)
}

func TestOutboxTaskRepo_GetProcessableTasks(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewOutboxTaskRepo(3)

	id := uuid.New()
	mockTx.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(),
		gomock.Eq(repository.TaskStatusCreated), gomock.Eq(repository.TaskStatusFailed), gomock.Eq(3), gomock.Eq(10)).
		DoAndReturn(func(_ context.Context, dest any, _ string, _ ...any) error {
			*(dest.(*[]*repository.OutboxTask)) = []*repository.OutboxTask{{ID: id, Status: repository.TaskStatusCreated}}
			return nil
		})

	tasks, err := repo.GetProcessableTasks(ctx, mockTx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
}

func TestOutboxTaskRepo_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		tag     pgconn.CommandTag
		err     error
		wantErr error
	}{
		{name: "updated", tag: pgconn.CommandTag("UPDATE 1")},
		{name: "missing", tag: pgconn.CommandTag("UPDATE 0"), wantErr: repository.ErrObjectNotFound},
		{name: "database error", err: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := mock_database.NewMockDB(ctrl)
			repo := postgresql.NewOutboxTaskRepo(5)

			mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Eq(id), gomock.Eq(repository.TaskStatusDone), gomock.Eq(1), gomock.Nil(), gomock.Eq(&now)).
				Return(tt.tag, tt.err)

			err := repo.UpdateTaskStatus(ctx, mockDB, id, repository.TaskStatusDone, 1, nil, &now)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.err != nil:
				assert.ErrorIs(t, err, tt.err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
