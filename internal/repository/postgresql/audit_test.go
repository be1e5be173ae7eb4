package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	mock_database "gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/repository/postgresql"
	"go.uber.org/mock/gomock"
)

func TestAuditRepo_CreateBatch(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []*repository.AuditEntry{
		{LoggedAt: at, Operator: "op", Method: "POST", Path: "/desk/accept", Action: "accept", StatusCode: 200},
		{LoggedAt: at, Operator: "op", Method: "POST", Path: "/desk/clear", Action: "clear", StatusCode: 409},
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewAuditRepo(mockDB)

		mockDB.EXPECT().BeginTx(gomock.Any()).Return(mockTx, nil)
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("op"), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil).Times(2)
		mockTx.EXPECT().Commit(gomock.Any()).Return(nil)
		mockTx.EXPECT().Rollback(gomock.Any()).Return(nil)

		assert.NoError(t, repo.CreateBatch(ctx, entries))
	})

	t.Run("insert error rolls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewAuditRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().BeginTx(gomock.Any()).Return(mockTx, nil)
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)
		mockTx.EXPECT().Rollback(gomock.Any()).Return(nil)

		assert.ErrorIs(t, repo.CreateBatch(ctx, entries), expectedErr)
	})

	t.Run("empty batch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := postgresql.NewAuditRepo(mock_database.NewMockDB(ctrl))
		assert.NoError(t, repo.CreateBatch(ctx, nil))
	})
}
