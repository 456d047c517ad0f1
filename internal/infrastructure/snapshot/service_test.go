package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/domain/entity"
	repomocks "github.com/bnema/panetree/internal/domain/repository/mocks"
	"github.com/bnema/panetree/internal/infrastructure/mainloop"
)

func newManager(t *testing.T) *usecase.WindowManager {
	t.Helper()
	m := usecase.NewWindowManager(usecase.WindowManagerOptions{})
	_, err := m.OpenWindow(context.Background(), m.Root().ID, "hello", entity.InsertRight, "")
	require.NoError(t, err)
	return m
}

func TestService_MarkDirtyDebounces(t *testing.T) {
	repo := repomocks.NewMockLayoutRepository(t)
	sched := mainloop.NewManual()
	provider := usecase.ManagerLayout{Name: "autosave", Manager: newManager(t)}

	repo.EXPECT().SaveLayout(mock.Anything, mock.AnythingOfType("*entity.Layout")).
		Run(func(_ context.Context, layout *entity.Layout) {
			assert.Equal(t, "autosave", layout.Name)
			assert.Equal(t, 1, layout.CountWindows())
		}).
		Return(nil).Once()

	svc := NewService(repo, provider, sched, time.Second)
	svc.Start(context.Background())

	svc.MarkDirty()
	sched.Advance(500 * time.Millisecond)
	svc.MarkDirty()
	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, svc.Saves(), "re-arming postpones the save")

	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, svc.Saves())
	assert.Equal(t, 0, sched.Pending())
}

func TestService_NotStartedSkipsScheduledSave(t *testing.T) {
	repo := repomocks.NewMockLayoutRepository(t)
	sched := mainloop.NewManual()
	svc := NewService(repo, usecase.ManagerLayout{Name: "x", Manager: newManager(t)}, sched, time.Second)

	svc.MarkDirty()
	sched.Advance(time.Second)
	assert.Equal(t, 0, svc.Saves())
}

func TestService_SaveNowOnlyWhenDirty(t *testing.T) {
	repo := repomocks.NewMockLayoutRepository(t)
	sched := mainloop.NewManual()
	svc := NewService(repo, usecase.ManagerLayout{Name: "x", Manager: newManager(t)}, sched, time.Second)

	require.NoError(t, svc.SaveNow(context.Background()))

	repo.EXPECT().SaveLayout(mock.Anything, mock.Anything).Return(nil).Once()
	svc.MarkDirty()
	require.NoError(t, svc.SaveNow(context.Background()))
	assert.Equal(t, 0, sched.Pending(), "pending debounce is canceled")
	assert.Equal(t, 1, svc.Saves())
}

func TestService_FailedSaveStaysDirty(t *testing.T) {
	repo := repomocks.NewMockLayoutRepository(t)
	sched := mainloop.NewManual()
	svc := NewService(repo, usecase.ManagerLayout{Name: "x", Manager: newManager(t)}, sched, time.Second)
	diskFull := errors.New("disk full")

	repo.EXPECT().SaveLayout(mock.Anything, mock.Anything).Return(diskFull).Once()
	repo.EXPECT().SaveLayout(mock.Anything, mock.Anything).Return(nil).Once()

	svc.MarkDirty()
	err := svc.SaveNow(context.Background())
	require.ErrorIs(t, err, diskFull)

	require.NoError(t, svc.Stop(context.Background()), "stop retries the pending save")
	assert.Equal(t, 1, svc.Saves())
}

func TestService_DefaultInterval(t *testing.T) {
	svc := NewService(nil, nil, mainloop.NewManual(), 0)
	assert.Equal(t, DefaultInterval, svc.interval)
}
