// Package mcptool serves the sandbox as a Model Context Protocol tool over
// stdio, so MCP clients can run code through the same service as the HTTP API.
package mcptool

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/service"
	"github.com/sudankdk/cee/internal/utils"
)

const maxOutput = 4000

// Executor is the part of the service the tool calls.
type Executor interface {
	Execute(ctx context.Context, userID *int64, in service.ExecuteInput) (*model.ExecutionRecord, error)
}

type Tool struct {
	exec Executor
}

func New(exec Executor) *Tool {
	return &Tool{exec: exec}
}

// Server builds an MCP server exposing code_run.
func (t *Tool) Server(version string) *server.MCPServer {
	s := server.NewMCPServer("cee", version)

	var langs []string
	for _, l := range languages.All {
		langs = append(langs, l.String())
	}

	s.AddTool(mcp.Tool{
		Name:        "code_run",
		Description: fmt.Sprintf("Execute code in an isolated, network-less Docker container. Supported languages: %s.", strings.Join(langs, ", ")),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Programming language",
					"enum":        langs,
				},
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to execute",
				},
				"stdin": map[string]any{
					"type":        "string",
					"description": "Standard input to provide to the program (optional)",
				},
			},
			Required: []string{"language", "code"},
		},
	}, t.handleCodeRun)
	return s
}

// ServeStdio blocks serving requests on stdin/stdout.
func (t *Tool) ServeStdio(version string) error {
	return server.ServeStdio(t.Server(version))
}

func (t *Tool) handleCodeRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, err := request.RequireString("language")
	if err != nil {
		return errResult("error: " + err.Error()), nil
	}
	code, err := request.RequireString("code")
	if err != nil {
		return errResult("error: " + err.Error()), nil
	}
	stdin := request.GetString("stdin", "")

	if language == "" || code == "" {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	rec, err := t.exec.Execute(ctx, nil, service.ExecuteInput{Language: language, Code: code, Stdin: stdin})
	if err != nil {
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}

	exitCode := 0
	if rec.ExitCode != nil {
		exitCode = *rec.ExitCode
	}

	var output strings.Builder
	if rec.Stdout != "" {
		output.WriteString(rec.Stdout)
	}
	if rec.Stderr != "" {
		if output.Len() > 0 {
			output.WriteString("\n")
		}
		output.WriteString("STDERR:\n" + rec.Stderr)
	}
	if exitCode != 0 {
		output.WriteString(fmt.Sprintf("\nexit code: %d", exitCode))
	}

	text := output.String()
	if len(text) > maxOutput {
		text = utils.Truncate(text, maxOutput) + "\n... (output truncated)"
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: exitCode != 0,
	}, nil
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
