package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/gather/internal/config"
	"github.com/harrison/gather/internal/filelock"
	"github.com/harrison/gather/internal/logger"
	"github.com/harrison/gather/internal/workspace"
)

// app bundles the per-invocation environment every command needs.
type app struct {
	home  string
	cfg   *config.Config
	log   *logger.ConsoleLogger
	store *workspace.Store

	lock *filelock.WorkspaceLock
}

// openApp resolves the gather home, loads config, and opens the store.
// When mutating is true it also takes the workspace lock so two gather
// processes cannot interleave tier writes.
func openApp(cmd *cobra.Command, mutating bool) (*app, error) {
	home, err := config.GetGatherHome()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFromHome(home)
	if err != nil {
		return nil, err
	}
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		cfg.LogLevel = flagLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)

	a := &app{home: home, cfg: cfg, log: log}

	if mutating {
		lock := filelock.New(config.LockPath(home))
		acquired, err := lock.TryAcquire()
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, fmt.Errorf("another gather process is using %s", home)
		}
		a.lock = lock
	}

	store, err := workspace.NewStore(home, log)
	if err != nil {
		if a.lock != nil {
			a.lock.Release()
		}
		return nil, err
	}
	a.store = store

	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.lock != nil {
		a.lock.Release()
	}
}

// confirm asks a yes/no question on the command's streams. assumeYes
// short-circuits to true for --yes invocations.
func confirm(in io.Reader, out io.Writer, prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// splitList parses a comma-separated flag value into trimmed entries.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
