package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"rss-portal/internal/app"
	"rss-portal/internal/observability/logging"
)

// opener builds the application; tests replace it.
type opener func(ctx context.Context, logger *slog.Logger) (*app.App, error)

type commandContext struct {
	open opener

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(open opener) *commandContext {
	if open == nil {
		open = app.New
	}
	return &commandContext{open: open}
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = logging.NewForWriter(os.Stderr)
		slog.SetDefault(c.logger)
	})
	return c.logger
}

// withApp opens the store, runs fn and closes the store again.
func (c *commandContext) withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := c.open(ctx, c.log())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.log().Error("failed to close database", slog.Any("error", err))
		}
	}()
	return fn(a)
}
