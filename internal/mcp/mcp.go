// Package mcp exposes command execution with full output capture as an MCP
// server, so model clients can run commands and browse the run history.
package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appget "github.com/slok/runcap/internal/app/get"
	applist "github.com/slok/runcap/internal/app/list"
	apprun "github.com/slok/runcap/internal/app/run"
	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/printer"
)

//go:embed instructions.md
var instructions string

// ServerConfig is the configuration for the MCP server.
type ServerConfig struct {
	RunService  *apprun.Service
	GetService  *appget.Service
	ListService *applist.Service
	Version     string
	Logger      log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.RunService == nil {
		return fmt.Errorf("run service is required")
	}

	if c.GetService == nil {
		return fmt.Errorf("get service is required")
	}

	if c.ListService == nil {
		return fmt.Errorf("list service is required")
	}

	if c.Version == "" {
		c.Version = "dev"
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "mcp.Server"})

	return nil
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	runSvc  *apprun.Service
	getSvc  *appget.Service
	listSvc *applist.Service
	logger  log.Logger
}

// NewServer creates an MCP server with all runcap tools registered.
func NewServer(cfg ServerConfig) (*mcp.Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := &handler{
		runSvc:  cfg.RunService,
		getSvc:  cfg.GetService,
		listSvc: cfg.ListService,
		logger:  cfg.Logger,
	}

	s := mcp.NewServer(&mcp.Implementation{Name: "runcap", Version: cfg.Version}, &mcp.ServerOptions{
		Instructions: instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "run_command",
		Description: `Run a command to completion and capture its output.

Spawns the command, drains stdout and stderr concurrently and waits for the
exit status. Returns a JSON object with at most three keys in stdout, stderr,
exit_code order. A key is present only when the engine wired that channel.
Text output is returned verbatim, non UTF-8 output comes base64 encoded under
a "binary" key.`,
	}, h.runCommandHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_run",
		Description: `Get a recorded run from history by ID.

Without an ID it returns the most recent run.`,
	}, h.getRunHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_runs",
		Description: `List recorded runs from history, newest first.`,
	}, h.listRunsHandler)

	return s, nil
}

type runCommandParams struct {
	Command    []string          `json:"command" jsonschema:"Command and its arguments, e.g. [\"sh\", \"-c\", \"echo hi\"]."`
	WorkingDir string            `json:"working_dir,omitempty" jsonschema:"Directory the command runs in. Defaults to the server working directory."`
	Env        map[string]string `json:"env,omitempty" jsonschema:"Extra environment variables for the command."`
	Input      string            `json:"input,omitempty" jsonschema:"Data written to the command standard input before it runs."`
	Tty        bool              `json:"tty,omitempty" jsonschema:"Allocate a terminal, merging stdout and stderr into one stream."`
	NoStore    bool              `json:"no_store,omitempty" jsonschema:"Skip recording the run in history."`
}

func (h *handler) runCommandHandler(ctx context.Context, req *mcp.CallToolRequest, params runCommandParams) (*mcp.CallToolResult, any, error) {
	spec := model.CommandSpec{
		Command:    params.Command,
		WorkingDir: params.WorkingDir,
		Env:        params.Env,
		Tty:        params.Tty,
	}
	if params.Input != "" {
		spec.Input = []byte(params.Input)
	}

	h.logger.Debugf("Tool run_command: %v", params.Command)

	gotRun, err := h.runSvc.Run(ctx, apprun.Request{Spec: spec, NoStore: params.NoStore})
	if err != nil {
		return errorResult(fmt.Sprintf("run failed: %v", err))
	}

	var b strings.Builder
	if err := printer.NewJSONPrinter(&b).PrintRecord(gotRun.Record); err != nil {
		return errorResult(fmt.Sprintf("could not encode record: %v", err))
	}

	return textResult(b.String())
}

type getRunParams struct {
	ID string `json:"id,omitempty" jsonschema:"Run ID or unique ID prefix to fetch. Empty means the most recent run."`
}

func (h *handler) getRunHandler(ctx context.Context, req *mcp.CallToolRequest, params getRunParams) (*mcp.CallToolResult, any, error) {
	gotRun, err := h.getSvc.Run(ctx, appget.Request{ID: params.ID})
	if err != nil {
		return errorResult(fmt.Sprintf("get failed: %v", err))
	}

	var b strings.Builder
	if err := printer.NewJSONPrinter(&b).PrintRun(*gotRun); err != nil {
		return errorResult(fmt.Sprintf("could not encode run: %v", err))
	}

	return textResult(b.String())
}

type listRunsParams struct {
	Limit  int  `json:"limit,omitempty" jsonschema:"Maximum number of runs to return. 0 means all."`
	Failed bool `json:"failed,omitempty" jsonschema:"Only return runs that ended with a non-zero or missing exit code."`
}

func (h *handler) listRunsHandler(ctx context.Context, req *mcp.CallToolRequest, params listRunsParams) (*mcp.CallToolResult, any, error) {
	runs, err := h.listSvc.Run(ctx, applist.Request{Limit: params.Limit, Failed: params.Failed})
	if err != nil {
		return errorResult(fmt.Sprintf("list failed: %v", err))
	}

	var b strings.Builder
	if err := printer.NewJSONPrinter(&b).PrintRunList(runs); err != nil {
		return errorResult(fmt.Sprintf("could not encode runs: %v", err))
	}

	return textResult(b.String())
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
