package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"earshot/internal/client"
	"earshot/internal/config"
	"earshot/internal/language"
	"earshot/internal/logging"
)

type globalFlags struct {
	config string
	server string
	lang   string
	json   bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

// language resolves --lang, falling back to client.language.
func (c *commandContext) language() (*language.Setting, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(c.flags.lang)
	if raw == "" {
		raw = cfg.Client.Language
	}
	code, err := language.Parse(raw)
	if err != nil {
		return nil, err
	}
	return language.NewSetting(code), nil
}

func (c *commandContext) newClient() (*client.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	clientCfg := cfg.Client
	if server := strings.TrimSpace(c.flags.server); server != "" {
		clientCfg.ServerURL = server
	}
	return client.FromConfig(clientCfg)
}

// cliLogger reports soft failures (inspection and ingest warnings) on the
// command's stderr.
func (c *commandContext) cliLogger(cmd *cobra.Command) *slog.Logger {
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: cmd.ErrOrStderr()})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func wrapRequestError(err error, server string) error {
	var urlErr *url.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to backend: %s refused the connection; start it with `earshot serve`", server)
	case errors.As(err, &urlErr) && urlErr.Timeout():
		return fmt.Errorf("connect to backend: %s timed out", server)
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
