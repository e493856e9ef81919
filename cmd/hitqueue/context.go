package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"hitqueue/internal/config"
	"hitqueue/internal/ipc"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	socket string
	config string
	json   bool
}

// commandContext lazily loads configuration once per invocation and hands out
// daemon clients.
type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err == nil {
			err = cfg.EnsureDirectories()
		}
		c.config, c.configPath, c.configErr = cfg, path, err
		if err != nil {
			c.config = nil
		}
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	return strings.TrimSpace(c.flags.config)
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.flags.json
}

// socketPath prefers --socket, then the configured socket, then the default.
func (c *commandContext) socketPath() string {
	if sock := strings.TrimSpace(c.flags.socket); sock != "" {
		return sock
	}
	cfg, err := c.ensureConfig()
	if err == nil && cfg.Paths.SocketPath != "" {
		return cfg.Paths.SocketPath
	}
	return defaultSocketPath()
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to daemon: socket %s not found; start it with `hitqueued`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}

func defaultSocketPath() string {
	path, err := config.ExpandPath("~/.local/share/hitqueue/hitqueue.sock")
	if err != nil {
		return filepath.Join(os.TempDir(), "hitqueue.sock")
	}
	return path
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
