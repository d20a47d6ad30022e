package docker

import (
	"context"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"go.uber.org/zap"

	"github.com/sudankdk/cee/internal/logger"
	"github.com/sudankdk/cee/internal/metrics"
)

// Reaper removes sandbox containers that outlived their execution, for
// example when the process died between create and cleanup.
type Reaper struct {
	api      API
	interval time.Duration
	minAge   time.Duration
	now      func() time.Time
}

// NewReaper sweeps every interval. Containers younger than minAge are left
// alone so in-flight executions are never touched.
func NewReaper(api API, interval, minAge time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{api: api, interval: interval, minAge: minAge, now: time.Now}
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "zombie cleanup stopped")
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				logger.Warn(ctx, "container list failed", zap.Error(err))
			}
		}
	}
}

// Sweep removes exited or never-started sandbox containers older than minAge.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	containers, err := r.api.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", LabelManaged+"=true"),
			filters.Arg("status", "exited"),
			filters.Arg("status", "created"),
			filters.Arg("status", "dead"),
		),
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := r.now().Add(-r.minAge)
	for _, ctr := range containers {
		if time.Unix(ctr.Created, 0).After(cutoff) {
			continue
		}
		err := r.api.ContainerRemove(ctx, ctr.ID, container.RemoveOptions{Force: true})
		if err != nil && !isGone(err) {
			logger.Warn(ctx, "failed to remove zombie container", zap.String("container_id", shortID(ctr.ID)), zap.Error(err))
			continue
		}
		removed++
		metrics.ReapedContainers.Inc()
		logger.Info(ctx, "removed zombie container", zap.String("container_id", shortID(ctr.ID)))
	}
	return removed, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
