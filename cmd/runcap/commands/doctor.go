package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"

	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/printer"
)

const (
	// minFreeDisk is the free disk space under which the run history is at risk.
	minFreeDisk = 50 * 1024 * 1024
	// minFreeMemory is the available memory under which spawning may fail.
	minFreeMemory = 64 * 1024 * 1024
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	engine string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for spawner engines.")
	c.Cmd.Flag("engine", "Engine to check (local, docker, fake, all).").Default("all").EnumVar(&c.engine, "local", "docker", "fake", "all")

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	// Host checks first.
	allResults := []engineCheckResults{
		{name: "host", results: c.hostChecks(ctx)},
	}

	var engines []model.EngineType
	for _, engineType := range []model.EngineType{model.EngineLocal, model.EngineDocker, model.EngineFake} {
		if c.engine == "all" || c.engine == string(engineType) {
			engines = append(engines, engineType)
		}
	}

	// Engine checks run concurrently, a slow daemon ping should not
	// serialize the rest.
	engineResults := make([]engineCheckResults, len(engines))
	g, ctx := errgroup.WithContext(ctx)
	for i, engineType := range engines {
		g.Go(func() error {
			eng, err := newEngineFromType(engineType, logger)
			if err != nil {
				return fmt.Errorf("could not create %s engine: %w", engineType, err)
			}

			engineResults[i] = engineCheckResults{
				name:    string(engineType),
				results: eng.Check(ctx),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	allResults = append(allResults, engineResults...)

	// Print results
	var all []model.CheckResult
	for _, er := range allResults {
		fmt.Fprintf(out, "\nChecking %s...\n", er.name)
		for _, r := range er.results {
			icon := getStatusIcon(r.Status)
			fmt.Fprintf(out, "  %s %-20s %s\n", icon, r.ID, r.Message)
		}
		all = append(all, er.results...)
	}

	// Summary
	_, totalWarnings, totalErrors := model.CountByStatus(all)

	fmt.Fprintln(out)
	if totalErrors == 0 && totalWarnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		var summary []string
		if totalErrors > 0 {
			summary = append(summary, fmt.Sprintf("%d error(s)", totalErrors))
		}
		if totalWarnings > 0 {
			summary = append(summary, fmt.Sprintf("%d warning(s)", totalWarnings))
		}
		fmt.Fprintf(out, "%s\n", strings.Join(summary, ", "))
	}

	if totalErrors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", totalErrors)
	}

	return nil
}

// hostChecks verifies the host has the resources runcap itself needs.
func (c DoctorCommand) hostChecks(ctx context.Context) []model.CheckResult {
	var results []model.CheckResult

	// Check 1: Free disk space where the run history lives.
	results = append(results, c.checkDiskSpace())

	// Check 2: Available memory for spawned processes.
	results = append(results, c.checkMemory())

	// Check 3: Run history opens and migrates.
	results = append(results, c.checkHistoryStore(ctx))

	return results
}

func (c DoctorCommand) checkDiskSpace() model.CheckResult {
	const id = "disk_space"

	usage, err := disk.Usage(filepath.Dir(c.rootCmd.DBPath))
	if err != nil {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("Could not read disk usage: %v", err),
		}
	}

	if usage.Free < minFreeDisk {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("Low disk space for run history: %s free", printer.FormatBytes(int64(usage.Free))),
		}
	}

	return model.CheckResult{
		ID:      id,
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("%s free for run history", printer.FormatBytes(int64(usage.Free))),
	}
}

func (c DoctorCommand) checkHistoryStore(ctx context.Context) model.CheckResult {
	const id = "history_store"

	repo, closeRepo, err := c.rootCmd.Repository(ctx)
	if err != nil {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("Could not open run history: %v", err),
		}
	}
	defer closeRepo()

	if _, err := repo.ListRuns(ctx); err != nil {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("Could not read run history: %v", err),
		}
	}

	if c.rootCmd.NoDB {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusOK,
			Message: "In-memory run history (--no-db)",
		}
	}

	return model.CheckResult{
		ID:      id,
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("Run history at %s", c.rootCmd.DBPath),
	}
}

func (c DoctorCommand) checkMemory() model.CheckResult {
	const id = "memory_available"

	vm, err := mem.VirtualMemory()
	if err != nil {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("Could not read memory stats: %v", err),
		}
	}

	if vm.Available < minFreeMemory {
		return model.CheckResult{
			ID:      id,
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("Low available memory: %s", printer.FormatBytes(int64(vm.Available))),
		}
	}

	return model.CheckResult{
		ID:      id,
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("%s memory available", printer.FormatBytes(int64(vm.Available))),
	}
}

type engineCheckResults struct {
	name    string
	results []model.CheckResult
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
