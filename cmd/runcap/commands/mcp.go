package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	appget "github.com/slok/runcap/internal/app/get"
	applist "github.com/slok/runcap/internal/app/list"
	apprun "github.com/slok/runcap/internal/app/run"
	runcapmcp "github.com/slok/runcap/internal/mcp"
)

type MCPCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	engine string
}

// NewMCPCommand returns the mcp command.
func NewMCPCommand(rootCmd *RootCommand, app *kingpin.Application) *MCPCommand {
	c := &MCPCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("mcp", "Serve runcap tools over MCP on stdin/stdout.")
	c.Cmd.Flag("engine", "Engine to run commands with (local, docker, fake).").EnumVar(&c.engine, "local", "docker", "fake")

	return c
}

func (c MCPCommand) Name() string { return c.Cmd.FullCommand() }

func (c MCPCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Load optional tool configuration.
	toolCfg, err := c.rootCmd.ToolConfig(ctx)
	if err != nil {
		return err
	}
	engineType := resolveEngine(c.engine, toolCfg)

	// Initialize storage. MCP sessions often want --no-db so tool calls do
	// not pollute the user's history.
	repo, closeRepo, err := c.rootCmd.Repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize spawner engine.
	engine, err := newEngineFromType(engineType, logger)
	if err != nil {
		return fmt.Errorf("could not create engine: %w", err)
	}

	// Create app services.
	runSvc, err := apprun.NewService(apprun.ServiceConfig{
		Spawner:        engine,
		Repository:     repo,
		Engine:         engineType,
		HistoryMaxRuns: toolCfg.HistoryMaxRuns,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create run service: %w", err)
	}

	getSvc, err := appget.NewService(appget.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create get service: %w", err)
	}

	listSvc, err := applist.NewService(applist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create list service: %w", err)
	}

	// Create the MCP server.
	server, err := runcapmcp.NewServer(runcapmcp.ServerConfig{
		RunService:  runSvc,
		GetService:  getSvc,
		ListService: listSvc,
		Version:     c.rootCmd.Version,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create MCP server: %w", err)
	}

	logger.Infof("Serving MCP on stdin/stdout with %s engine", engineType)

	// Serve until the client disconnects or the context ends.
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
