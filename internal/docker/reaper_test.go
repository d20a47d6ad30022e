package docker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSweepRemovesOnlyOldContainers(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	api := new(MockAPI)
	api.On("ContainerList", mock.Anything, mock.MatchedBy(func(opts container.ListOptions) bool {
		return opts.All && opts.Filters.ExactMatch("label", LabelManaged+"=true")
	})).Return([]container.Summary{
		{ID: "old-exited", Created: now.Add(-10 * time.Minute).Unix()},
		{ID: "already-gone", Created: now.Add(-5 * time.Minute).Unix()},
		{ID: "fresh", Created: now.Add(-10 * time.Second).Unix()},
	}, nil)
	api.On("ContainerRemove", mock.Anything, "old-exited", container.RemoveOptions{Force: true}).Return(nil)
	api.On("ContainerRemove", mock.Anything, "already-gone", container.RemoveOptions{Force: true}).
		Return(fmt.Errorf("no such container: %w", cerrdefs.ErrNotFound))

	r := NewReaper(api, time.Minute, time.Minute)
	r.now = func() time.Time { return now }

	removed, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	api.AssertNotCalled(t, "ContainerRemove", mock.Anything, "fresh", mock.Anything)
}

func TestSweepKeepsGoingAfterRemoveFailure(t *testing.T) {
	api := new(MockAPI)
	api.On("ContainerList", mock.Anything, mock.Anything).Return([]container.Summary{
		{ID: "stuck"},
		{ID: "ok"},
	}, nil)
	api.On("ContainerRemove", mock.Anything, "stuck", mock.Anything).Return(errors.New("device busy"))
	api.On("ContainerRemove", mock.Anything, "ok", mock.Anything).Return(nil)

	removed, err := NewReaper(api, time.Minute, 0).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	api.AssertExpectations(t)
}

func TestSweepListFailure(t *testing.T) {
	api := new(MockAPI)
	api.On("ContainerList", mock.Anything, mock.Anything).Return([]container.Summary(nil), errors.New("daemon down"))

	_, err := NewReaper(api, time.Minute, 0).Sweep(context.Background())
	assert.EqualError(t, err, "daemon down")
}

func TestReaperRunStopsWithContext(t *testing.T) {
	listed := make(chan struct{}, 1)
	api := new(MockAPI)
	api.On("ContainerList", mock.Anything, mock.Anything).Return([]container.Summary{}, nil).
		Run(func(mock.Arguments) {
			select {
			case listed <- struct{}{}:
			default:
			}
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewReaper(api, 10*time.Millisecond, 0).Run(ctx)
		close(done)
	}()

	select {
	case <-listed:
	case <-time.After(time.Second):
		t.Fatal("reaper never swept")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
