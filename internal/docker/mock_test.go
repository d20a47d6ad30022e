package docker

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/mock"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error) {
	args := m.Called(ctx, imageID)
	return args.Get(0).(image.InspectResponse), args.Error(1)
}

func (m *MockAPI) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	args := m.Called(ctx, config, hostConfig, networkingConfig, platform, containerName)
	return args.Get(0).(container.CreateResponse), args.Error(1)
}

func (m *MockAPI) ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error) {
	args := m.Called(ctx, containerID, options)
	return args.Get(0).(types.HijackedResponse), args.Error(1)
}

func (m *MockAPI) CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error {
	args := m.Called(ctx, containerID, dstPath, content, options)
	return args.Error(0)
}

func (m *MockAPI) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	args := m.Called(ctx, containerID, options)
	return args.Error(0)
}

func (m *MockAPI) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	args := m.Called(ctx, containerID, condition)
	return args.Get(0).(<-chan container.WaitResponse), args.Get(1).(<-chan error)
}

func (m *MockAPI) ContainerKill(ctx context.Context, containerID, signal string) error {
	args := m.Called(ctx, containerID, signal)
	return args.Error(0)
}

func (m *MockAPI) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	args := m.Called(ctx, containerID, options)
	return args.Error(0)
}

func (m *MockAPI) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, containerID, options)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	args := m.Called(ctx, options)
	return args.Get(0).([]container.Summary), args.Error(1)
}

func (m *MockAPI) Close() error {
	return m.Called().Error(0)
}

// fakeConn stands in for the hijacked attach connection. Reads return the
// multiplexed output the fake process writes; writes collect stdin.
type fakeConn struct {
	out  *io.PipeReader
	outW *io.PipeWriter

	mu        sync.Mutex
	in        bytes.Buffer
	inClosed  chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	r, w := io.Pipe()
	return &fakeConn{out: r, outW: w, inClosed: make(chan struct{})}
}

func (c *fakeConn) Read(p []byte) (int, error) { return c.out.Read(p) }

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in.Write(p)
}

func (c *fakeConn) CloseWrite() error {
	c.closeOnce.Do(func() { close(c.inClosed) })
	return nil
}

func (c *fakeConn) Close() error {
	_ = c.CloseWrite()
	return c.out.Close()
}

func (c *fakeConn) stdin() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in.String()
}

func (c *fakeConn) LocalAddr() net.Addr { return nil }
func (c *fakeConn) RemoteAddr() net.Addr { return nil }
func (c *fakeConn) SetDeadline(time.Time) error { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

// respondFunc is the fake program: it sees all of stdin and returns what it
// prints and its exit code.
type respondFunc func(stdin string) (stdout, stderr string, code int64)

type fakeContainer struct {
	id      string
	conn    *fakeConn
	status  chan container.WaitResponse
	errs    chan error
	respond respondFunc
}

func newFakeContainer(id string, respond respondFunc) *fakeContainer {
	return &fakeContainer{
		id:      id,
		conn:    newFakeConn(),
		status:  make(chan container.WaitResponse, 1),
		errs:    make(chan error, 1),
		respond: respond,
	}
}

func (f *fakeContainer) hijacked() types.HijackedResponse {
	return types.HijackedResponse{Conn: f.conn, Reader: bufio.NewReader(f.conn)}
}

// run behaves like the container process: wait for stdin EOF, print, exit.
func (f *fakeContainer) run() {
	<-f.conn.inClosed
	stdout, stderr, code := f.respond(f.conn.stdin())
	if stdout != "" {
		_, _ = stdcopy.NewStdWriter(f.conn.outW, stdcopy.Stdout).Write([]byte(stdout))
	}
	if stderr != "" {
		_, _ = stdcopy.NewStdWriter(f.conn.outW, stdcopy.Stderr).Write([]byte(stderr))
	}
	_ = f.conn.outW.Close()
	f.status <- container.WaitResponse{StatusCode: code}
}

// expect wires every per-container call of a run to f. A nil respond means
// the process never exits.
func (f *fakeContainer) expect(m *MockAPI) {
	var statusCh <-chan container.WaitResponse = f.status
	var errCh <-chan error = f.errs

	m.On("ContainerAttach", mock.Anything, f.id, mock.Anything).Return(f.hijacked(), nil)
	m.On("CopyToContainer", mock.Anything, f.id, DefaultWorkDir, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("ContainerWait", mock.Anything, f.id, container.WaitConditionNextExit).Return(statusCh, errCh)
	m.On("ContainerStart", mock.Anything, f.id, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		if f.respond != nil {
			go f.run()
		}
	})
	m.On("ContainerKill", mock.Anything, f.id, "SIGKILL").Return(nil)
	m.On("ContainerLogs", mock.Anything, f.id, mock.Anything).Return(io.NopCloser(&bytes.Buffer{}), nil).Maybe()
}

func echo(stdin string) (string, string, int64) { return stdin, "", 0 }
