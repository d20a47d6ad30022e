package mcptool

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/service"
)

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, userID *int64, in service.ExecuteInput) (*model.ExecutionRecord, error) {
	args := m.Called(ctx, userID, in)
	rec, _ := args.Get(0).(*model.ExecutionRecord)
	return rec, args.Error(1)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "code_run"
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestCodeRunSuccess(t *testing.T) {
	exec := new(MockExecutor)
	code := 0
	exec.On("Execute", mock.Anything, (*int64)(nil), service.ExecuteInput{Language: "python", Code: "print(1)"}).
		Return(&model.ExecutionRecord{Stdout: "1", ExitCode: &code}, nil)

	res, err := New(exec).handleCodeRun(context.Background(), call(map[string]any{"language": "python", "code": "print(1)"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "1", text(t, res))
}

func TestCodeRunNonZeroExit(t *testing.T) {
	exec := new(MockExecutor)
	code := 2
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.ExecutionRecord{Stdout: "partial", Stderr: "boom", ExitCode: &code}, nil)

	res, err := New(exec).handleCodeRun(context.Background(), call(map[string]any{"language": "ruby", "code": "exit 2", "stdin": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "partial\nSTDERR:\nboom\nexit code: 2", text(t, res))
	exec.AssertCalled(t, "Execute", mock.Anything, mock.Anything, service.ExecuteInput{Language: "ruby", Code: "exit 2", Stdin: "x"})
}

func TestCodeRunErrors(t *testing.T) {
	exec := new(MockExecutor)
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperr.UnsupportedLanguageError("cobol"))
	tool := New(exec)

	res, err := tool.handleCodeRun(context.Background(), call(map[string]any{"language": "cobol", "code": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "error: Unsupported language: cobol", text(t, res))

	res, err = tool.handleCodeRun(context.Background(), call(map[string]any{"code": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "required")

	res, err = tool.handleCodeRun(context.Background(), call(map[string]any{"language": 3, "code": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	exec.AssertNumberOfCalls(t, "Execute", 1)
}

func TestCodeRunTruncatesOutput(t *testing.T) {
	exec := new(MockExecutor)
	code := 0
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.ExecutionRecord{Stdout: strings.Repeat("a", maxOutput+10), ExitCode: &code}, nil)

	res, err := New(exec).handleCodeRun(context.Background(), call(map[string]any{"language": "go", "code": "x"}))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text(t, res), "(output truncated)"))
}

func TestCodeRunTruncatesOnRuneBoundary(t *testing.T) {
	exec := new(MockExecutor)
	code := 0
	// a two-byte rune straddles the cut
	out := strings.Repeat("a", maxOutput-1) + "é" + "tail"
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.ExecutionRecord{Stdout: out, ExitCode: &code}, nil)

	res, err := New(exec).handleCodeRun(context.Background(), call(map[string]any{"language": "go", "code": "x"}))
	require.NoError(t, err)
	got := text(t, res)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxOutput-1)+"\n... (output truncated)", got)
}

func TestServerRegistersTool(t *testing.T) {
	assert.NotNil(t, New(new(MockExecutor)).Server("test"))
}
