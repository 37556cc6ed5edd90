package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	appget "github.com/slok/runcap/internal/app/get"
	"github.com/slok/runcap/internal/printer"
)

type GetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	runID  string
	format string
}

// NewGetCommand returns the get command.
func NewGetCommand(rootCmd *RootCommand, app *kingpin.Application) *GetCommand {
	c := &GetCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("get", "Get a recorded run, the most recent one when no ID is given.")
	c.Cmd.Arg("run-id", "Run ID or unique ID prefix.").StringVar(&c.runID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c GetCommand) Name() string { return c.Cmd.FullCommand() }

func (c GetCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage.
	repo, closeRepo, err := c.rootCmd.Repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Create get service.
	svc, err := appget.NewService(appget.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute get.
	gotRun, err := svc.Run(ctx, appget.Request{ID: c.runID})
	if err != nil {
		return fmt.Errorf("could not get run: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintRun(*gotRun); err != nil {
		return fmt.Errorf("could not print run: %w", err)
	}

	return nil
}
