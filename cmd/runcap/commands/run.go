package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	apprun "github.com/slok/runcap/internal/app/run"
	"github.com/slok/runcap/internal/conventions"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/printer"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	command    []string
	engine     string
	image      string
	workingDir string
	envSpecs   []string
	tty        bool
	stdin      bool
	noStore    bool
	format     string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a command and capture its complete output and exit code.")
	c.Cmd.Arg("command", "Command to run (use -- before command).").Required().StringsVar(&c.command)
	c.Cmd.Flag("engine", "Engine to run the command with (local, docker, fake).").EnumVar(&c.engine, "local", "docker", "fake")
	c.Cmd.Flag("image", "Container image to run in. Docker engine only.").StringVar(&c.image)
	c.Cmd.Flag("workdir", "Working directory for the command.").Short('w').StringVar(&c.workingDir)
	c.Cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)
	c.Cmd.Flag("tty", "Allocate a pseudo-TTY, merging stdout and stderr.").Short('t').BoolVar(&c.tty)
	c.Cmd.Flag("stdin", "Read standard input fully and pass it to the command.").Short('i').BoolVar(&c.stdin)
	c.Cmd.Flag("no-store", "Do not record the run in history.").BoolVar(&c.noStore)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cmdEnv, err := parseEnvSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid --env value: %w", err)
	}

	// Load optional tool configuration.
	toolCfg, err := c.rootCmd.ToolConfig(ctx)
	if err != nil {
		return err
	}

	// Config env is the base, --env values override it.
	env := map[string]string{}
	for k, v := range toolCfg.Env {
		env[k] = v
	}
	for k, v := range cmdEnv {
		env[k] = v
	}

	engineType := resolveEngine(c.engine, toolCfg)

	image := c.image
	if image == "" {
		image = toolCfg.Image
	}
	if image == "" && engineType == model.EngineDocker {
		image = conventions.DefaultDockerImage
	}

	// Read the one-shot input buffer before spawning.
	var input []byte
	if c.stdin {
		input, err = io.ReadAll(c.rootCmd.Stdin)
		if err != nil {
			return fmt.Errorf("could not read standard input: %w", err)
		}
	}

	// Initialize storage.
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

	// Create run service.
	svc, err := apprun.NewService(apprun.ServiceConfig{
		Spawner:        engine,
		Repository:     repo,
		Engine:         engineType,
		HistoryMaxRuns: toolCfg.HistoryMaxRuns,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Run the command and wait for its completion record.
	gotRun, err := svc.Run(ctx, apprun.Request{
		Spec: model.CommandSpec{
			Command:    c.command,
			WorkingDir: c.workingDir,
			Env:        env,
			Input:      input,
			Tty:        c.tty,
			Image:      image,
		},
		NoStore: c.noStore,
	})
	if err != nil {
		return fmt.Errorf("could not run command: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintRecord(gotRun.Record); err != nil {
		return fmt.Errorf("could not print record: %w", err)
	}

	// Exit with the command's exit code. os.Exit skips the deferred close,
	// so close the storage explicitly first.
	if gotRun.Record.ExitCode != nil && *gotRun.Record.ExitCode != 0 {
		_ = closeRepo()
		os.Exit(*gotRun.Record.ExitCode)
	}

	return nil
}
