package lib

import (
	"context"
	"fmt"

	appget "github.com/slok/runcap/internal/app/get"
	applist "github.com/slok/runcap/internal/app/list"
	appremove "github.com/slok/runcap/internal/app/remove"
)

// GetRun returns a single recorded run by its ID or a unique ID prefix.
//
// Returns [ErrNotFound] if no run matches, [ErrNotValid] if a prefix
// matches more than one run.
func (c *Client) GetRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("a run ID is required: %w", ErrNotValid)
	}

	return c.getRun(ctx, id)
}

// LastRun returns the most recently recorded run.
//
// Returns [ErrNotFound] if the history is empty.
func (c *Client) LastRun(ctx context.Context) (*Run, error) {
	return c.getRun(ctx, "")
}

func (c *Client) getRun(ctx context.Context, id string) (*Run, error) {
	svc, err := appget.NewService(appget.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, appget.Request{ID: id})
	if err != nil {
		return nil, mapError(err)
	}

	run := fromInternalRun(*result)
	return &run, nil
}

// ListRuns returns the recorded runs, newest first.
//
// Use opts to filter by engine or outcome and to cap the result size. Pass
// nil opts to list everything.
func (c *Client) ListRuns(ctx context.Context, opts *ListRunsOpts) ([]Run, error) {
	svc, err := applist.NewService(applist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := applist.Request{Engine: toInternalEngineFilter(opts)}
	if opts != nil {
		req.Failed = opts.Failed
		req.Limit = opts.Limit
	}

	result, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalRunList(result), nil
}

// RemoveRun deletes a single run from history.
//
// Returns [ErrNotFound] if the run does not exist.
func (c *Client) RemoveRun(ctx context.Context, id string) error {
	svc, err := appremove.NewService(appremove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, appremove.Request{ID: id})
	if err != nil {
		return mapError(err)
	}

	return nil
}

// RemoveAllRuns deletes every run from history and returns how many were
// removed.
func (c *Client) RemoveAllRuns(ctx context.Context) (int, error) {
	svc, err := appremove.NewService(appremove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return 0, fmt.Errorf("could not create service: %w", err)
	}

	removed, err := svc.Run(ctx, appremove.Request{All: true})
	if err != nil {
		return 0, mapError(err)
	}

	return removed, nil
}
