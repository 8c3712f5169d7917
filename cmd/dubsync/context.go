package main

import (
	"log/slog"
	"strings"
	"sync"

	"dubsync/internal/config"
	"dubsync/internal/logging"
)

type commandContext struct {
	configFlag    *string
	workspaceFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, workspaceFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, workspaceFlag: workspaceFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.workspaceFlag != nil && strings.TrimSpace(*c.workspaceFlag) != "" {
			expanded, err := config.ExpandPath(*c.workspaceFlag)
			if err != nil {
				c.configErr = err
				return
			}
			cfg.SetWorkspace(expanded)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}
