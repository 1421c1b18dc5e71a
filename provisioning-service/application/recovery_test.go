package application

import (
	"context"
	"testing"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/provisioning-service/mocks"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecovery_Scan(t *testing.T) {
	repo := mocks.NewMockWorkflowRepository(t)
	dispatcher := mocks.NewMockWorkflowDispatcher(t)
	recovery := NewRecovery(repo, dispatcher, time.Minute, 25, zerolog.Nop())

	a, b := models.GenerateUUID(), models.GenerateUUID()
	repo.EXPECT().ListRecoverable(mock.Anything, 25).Return([]models.ID{a, b}, nil).Once()
	dispatcher.EXPECT().Dispatch(a).Return(true).Once()
	dispatcher.EXPECT().Dispatch(b).Return(false).Once()

	n, err := recovery.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecovery_ScanStoreError(t *testing.T) {
	repo := mocks.NewMockWorkflowRepository(t)
	dispatcher := mocks.NewMockWorkflowDispatcher(t)
	recovery := NewRecovery(repo, dispatcher, time.Minute, 0, zerolog.Nop())

	repo.EXPECT().ListRecoverable(mock.Anything, 100).Return(nil, domain.ErrStoreUnavailable).Once()

	_, err := recovery.Scan(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRecovery_RunScansUntilCancelled(t *testing.T) {
	repo := mocks.NewMockWorkflowRepository(t)
	dispatcher := mocks.NewMockWorkflowDispatcher(t)
	recovery := NewRecovery(repo, dispatcher, time.Millisecond, 10, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	scans := 0
	repo.EXPECT().ListRecoverable(mock.Anything, 10).RunAndReturn(func(context.Context, int) ([]models.ID, error) {
		scans++
		if scans == 3 {
			cancel()
		}
		return nil, nil
	})

	done := make(chan struct{})
	go func() {
		recovery.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recovery did not stop")
	}
	assert.GreaterOrEqual(t, scans, 3)
}
