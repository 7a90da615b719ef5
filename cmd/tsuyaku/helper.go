package main

import (
	"context"
	"fmt"

	"github.com/harunnryd/tsuyaku/internal/config"
	"github.com/harunnryd/tsuyaku/internal/model"
	"github.com/harunnryd/tsuyaku/internal/tool"
	_ "github.com/harunnryd/tsuyaku/internal/tool/builtin"

	"github.com/spf13/cobra"
)

// newRouter is swapped in tests.
var newRouter = func(ctx context.Context, cfg config.ProviderConfig) (routerCloser, error) {
	r, err := model.NewModelRouter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type routerCloser interface {
	model.ModelRouter
	Close() error
}

// executeWithClient builds the router and client from the loaded config and
// runs fn with a context that is cancelled on SIGINT/SIGTERM.
func executeWithClient(cmd *cobra.Command, useTools bool, fn func(ctx context.Context, router model.ModelRouter, client *model.Client) error) error {
	loadedCfg, err := loadConfigForCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	signals := NewSignalHandler(parent)
	signals.Start()
	defer signals.Stop()
	ctx := signals.Context()

	router, err := newRouter(ctx, loadedCfg.Provider)
	if err != nil {
		return err
	}
	defer router.Close()

	var tools model.ToolExecutor
	if useTools {
		registry, err := tool.NewBuiltinRegistry(tool.BuiltinOptions{})
		if err != nil {
			return err
		}
		tools = tool.NewRunner(registry)
	}

	return fn(ctx, router, model.NewClientFromConfig(router, tools, loadedCfg))
}

func loadConfigForCommand(cmd *cobra.Command) (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	loadedCfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	return loadedCfg, nil
}
