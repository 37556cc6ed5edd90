package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	applist "github.com/slok/runcap/internal/app/list"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/printer"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	engineFilter string
	failed       bool
	limit        int
	format       string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List recorded runs, newest first.")
	c.Cmd.Flag("engine", "Filter by engine (local, docker, fake).").StringVar(&c.engineFilter)
	c.Cmd.Flag("failed", "Only show runs that did not exit with 0.").BoolVar(&c.failed)
	c.Cmd.Flag("limit", "Maximum number of runs to show (0 means all).").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Parse engine filter if provided.
	var engineFilter *model.EngineType
	if c.engineFilter != "" {
		engine := model.EngineType(strings.ToLower(c.engineFilter))
		switch engine {
		case model.EngineLocal, model.EngineDocker, model.EngineFake:
			engineFilter = &engine
		default:
			return fmt.Errorf("invalid engine filter: %s (must be: local, docker, fake)", c.engineFilter)
		}
	}

	// Initialize storage.
	repo, closeRepo, err := c.rootCmd.Repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Create list service.
	svc, err := applist.NewService(applist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute list.
	runs, err := svc.Run(ctx, applist.Request{
		Engine: engineFilter,
		Failed: c.failed,
		Limit:  c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintRunList(runs); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
