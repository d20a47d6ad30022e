package docker

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-units"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/logger"
	"github.com/sudankdk/cee/internal/metrics"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/sandbox"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultWorkDir        = "/app"
	DefaultCleanupTimeout = 5 * time.Second
	DefaultMaxOutput      = 1 * units.MiB

	// TruncatedMarker ends a stream that hit the output cap.
	TruncatedMarker = "\n... (output truncated)"

	maxLogCapture = 64 * units.KiB
)

var pidsLimit int64 = 256

var defaultUlimits = []*units.Ulimit{
	{Name: "core", Soft: 0, Hard: 0},
	{Name: "nofile", Soft: 1024, Hard: 2048},
	// largest file the program (or its compiler) may create
	{Name: "fsize", Soft: 64 * units.MiB, Hard: 64 * units.MiB},
}

type Config struct {
	Timeout        time.Duration
	WorkDir        string
	CleanupTimeout time.Duration
	// MaxOutput caps the bytes kept per stream. The rest is drained and dropped.
	MaxOutput int64
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.WorkDir == "" {
		c.WorkDir = DefaultWorkDir
	}
	if c.CleanupTimeout <= 0 {
		c.CleanupTimeout = DefaultCleanupTimeout
	}
	if c.MaxOutput <= 0 {
		c.MaxOutput = DefaultMaxOutput
	}
	return c
}

// Manager runs one ExecutionRequest per container. It keeps no per-run state,
// so a single Manager serves concurrent calls.
type Manager struct {
	api API
	cfg Config
}

func NewManager(api API, cfg Config) *Manager {
	return &Manager{api: api, cfg: cfg.withDefaults()}
}

// Timeout is the wall-clock limit applied to every run.
func (m *Manager) Timeout() time.Duration {
	return m.cfg.Timeout
}

// Run creates, feeds and waits on a container for req. The container is killed
// (and removed when it will not remove itself) on every return path.
func (m *Manager) Run(ctx context.Context, req *sandbox.ExecutionRequest) (res model.ExecutionResult, err error) {
	if err := req.Validate(); err != nil {
		return res, apperr.Wrap(err, apperr.InvalidParams)
	}
	execID := logger.ExecutionID(ctx)
	if execID == "" {
		execID = uuid.NewString()
		ctx = logger.WithExecutionID(ctx, execID)
	}

	logger.Debug(ctx, "creating container",
		zap.String("image", req.ImageName),
		zap.String("memory", units.BytesSize(float64(req.MemoryLimitBytes))),
		zap.Int64("cpu_shares", req.CPUShares))

	resp, err := m.api.ContainerCreate(ctx, m.containerConfig(req, execID), m.hostConfig(req), nil, nil, "")
	if err != nil {
		if resp.ID != "" {
			m.release(ctx, resp.ID, false, false)
		}
		return res, apperr.Wrapf(err, apperr.ContainerCreationFailed, "Container creation failed: %v", err)
	}
	id := resp.ID
	ctx = logger.WithContainerID(ctx, id)

	started := false
	metrics.ActiveContainers.Inc()
	defer func() {
		m.release(ctx, id, req.AutoRemove, started)
		metrics.ActiveContainers.Dec()
	}()
	defer func() {
		if err != nil {
			m.captureLogs(ctx, id, err)
		}
	}()

	hijacked, err := m.api.ContainerAttach(ctx, id, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return res, runtimeError("attach", err)
	}
	defer hijacked.Close()

	if req.HasSource() {
		logger.Debug(ctx, "copying source file", zap.String("file", req.SourceFilename))
		archive, err := singleFileArchive(req.SourceFilename, req.SourceCode)
		if err != nil {
			return res, runtimeError("archive source", err)
		}
		if err := m.api.CopyToContainer(ctx, id, m.cfg.WorkDir, archive, container.CopyToContainerOptions{}); err != nil {
			return res, runtimeError("copy source", err)
		}
	}

	// registered before start so an auto-removed container cannot exit unobserved
	waitCtx, cancelWait := context.WithCancel(ctx)
	defer cancelWait()
	statusCh, waitErrCh := m.api.ContainerWait(waitCtx, id, container.WaitConditionNextExit)

	if err := m.api.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return res, runtimeError("start", err)
	}
	started = true
	startedAt := time.Now()

	stdout, stderr := newCappedBuffer(m.cfg.MaxOutput), newCappedBuffer(m.cfg.MaxOutput)
	drained := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(stdout, stderr, hijacked.Reader)
		drained <- err
	}()

	// a program that never reads stdin must not stall the deadline
	go func() {
		if req.Stdin != "" {
			if _, err := io.WriteString(hijacked.Conn, req.Stdin+"\n"); err != nil {
				logger.Debug(ctx, "stdin write failed", zap.Error(err))
			}
		}
		if err := hijacked.CloseWrite(); err != nil {
			logger.Debug(ctx, "stdin close failed", zap.Error(err))
		}
	}()

	deadline := time.NewTimer(m.cfg.Timeout)
	defer deadline.Stop()

	var exitCode *int
	select {
	case st := <-statusCh:
		if st.Error != nil {
			logger.Warn(ctx, "container wait returned no exit code", zap.String("reason", st.Error.Message))
		} else {
			code := int(st.StatusCode)
			exitCode = &code
		}
	case werr := <-waitErrCh:
		return res, runtimeError("wait", werr)
	case <-deadline.C:
		return res, m.timeoutError()
	case <-ctx.Done():
		return res, apperr.Wrapf(ctx.Err(), apperr.ContainerRuntime, "Execution cancelled: %v", ctx.Err())
	}
	elapsed := time.Since(startedAt)

	// the attach stream closes once the process exits; its tail is still bounded by the deadline
	select {
	case derr := <-drained:
		if derr != nil {
			logger.Warn(ctx, "output stream ended with error", zap.Error(derr))
		}
	case <-deadline.C:
		return res, m.timeoutError()
	}

	res = model.ExecutionResult{
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		ExitCode:        exitCode,
		ExecutionTimeMs: elapsed.Milliseconds(),
	}
	if stdout.truncated || stderr.truncated {
		logger.Warn(ctx, "container output truncated",
			zap.Int64("max_output", m.cfg.MaxOutput),
			zap.Bool("stdout", stdout.truncated),
			zap.Bool("stderr", stderr.truncated))
	}
	logger.Debug(ctx, "container finished",
		zap.Int("exit_code", res.ExitCodeOr(-1)),
		zap.Duration("elapsed", elapsed))
	return res, nil
}

func (m *Manager) containerConfig(req *sandbox.ExecutionRequest, execID string) *container.Config {
	return &container.Config{
		Image:        req.ImageName,
		Cmd:          req.Command,
		Tty:          false,
		OpenStdin:    true,
		StdinOnce:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		WorkingDir:   m.cfg.WorkDir,
		Labels: map[string]string{
			LabelManaged:   "true",
			LabelExecution: execID,
		},
	}
}

func (m *Manager) hostConfig(req *sandbox.ExecutionRequest) *container.HostConfig {
	return &container.HostConfig{
		AutoRemove:  req.AutoRemove,
		NetworkMode: container.NetworkMode(req.NetworkMode),
		Resources: container.Resources{
			Memory:    req.MemoryLimitBytes,
			CPUShares: req.CPUShares,
			PidsLimit: &pidsLimit,
			Ulimits:   defaultUlimits,
		},
	}
}

func (m *Manager) timeoutError() error {
	return apperr.Newf(apperr.ExecutionTimeout, "Execution timeout after %dms", m.cfg.Timeout.Milliseconds()).
		WithDetail("timeout_ms", m.cfg.Timeout.Milliseconds())
}

func runtimeError(step string, err error) error {
	return apperr.Wrapf(err, apperr.ContainerRuntime, "Container %s failed: %v", step, err).
		WithDetail("step", step)
}

// release kills the container and removes it unless the daemon will. A
// container that never started is removed either way, since auto-remove only
// fires on exit. Failures are logged and swallowed.
func (m *Manager) release(ctx context.Context, id string, autoRemove, started bool) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CleanupTimeout)
	defer cancel()

	if err := m.api.ContainerKill(cctx, id, "SIGKILL"); err != nil {
		if isGone(err) {
			logger.Debug(ctx, "container already stopped", zap.Error(err))
		} else {
			metrics.CleanupFailures.WithLabelValues("kill").Inc()
			logger.Warn(ctx, "failed to kill container", zap.Error(err))
		}
	}
	if autoRemove && started {
		return
	}
	if err := m.api.ContainerRemove(cctx, id, container.RemoveOptions{Force: true}); err != nil {
		if isGone(err) {
			return
		}
		metrics.CleanupFailures.WithLabelValues("remove").Inc()
		logger.Warn(ctx, "failed to remove container", zap.Error(err))
	}
}

// isGone covers containers that already exited (conflict) or were already
// auto-removed (not found).
func isGone(err error) bool {
	return cerrdefs.IsNotFound(err) || cerrdefs.IsConflict(err)
}

// captureLogs records whatever the container printed before a failure.
func (m *Manager) captureLogs(ctx context.Context, id string, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CleanupTimeout)
	defer cancel()

	rc, err := m.api.ContainerLogs(cctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		logger.Error(ctx, "container execution failed", zap.Error(cause), zap.NamedError("logs_error", err))
		return
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	_, _ = stdcopy.StdCopy(&stdout, &stderr, io.LimitReader(rc, maxLogCapture))
	logger.Error(ctx, "container execution failed",
		zap.Error(cause),
		zap.String("container_stdout", stdout.String()),
		zap.String("container_stderr", stderr.String()))
}

// cappedBuffer keeps the first limit bytes of a stream and discards the rest.
// Writes never fail, so StdCopy keeps draining the attach connection.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func newCappedBuffer(limit int64) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - int64(b.buf.Len())
	if room <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if int64(len(p)) <= room {
		return b.buf.Write(p)
	}
	cut := int(room)
	for cut > 0 && !utf8.RuneStart(p[cut]) {
		cut--
	}
	b.buf.Write(p[:cut])
	// the buffer is full even if the cut stepped back over a partial rune
	b.limit = int64(b.buf.Len())
	b.truncated = true
	return len(p), nil
}

// String returns the trimmed output, marked when the cap was hit.
func (b *cappedBuffer) String() string {
	out := strings.TrimSpace(b.buf.String())
	if b.truncated {
		out += TruncatedMarker
	}
	return out
}
