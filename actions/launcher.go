package actions

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"voice-assistant/logger"
)

// App maps a spoken keyword to the command that launches it.
type App struct {
	Keyword string
	Command string
}

// DefaultApps is the allowlist used when none is configured.
var DefaultApps = []App{
	{Keyword: "notepad", Command: "notepad"},
	{Keyword: "calculator", Command: "calc"},
}

// ExecRunner starts commands without waiting for them to exit.
type ExecRunner struct {
	Log *logger.Logger
}

func (r ExecRunner) Start(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return fmt.Errorf("empty command")
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}

	// reap the child whenever the user closes it
	go func() {
		if err := cmd.Wait(); err != nil && r.Log != nil {
			r.Log.Warnw("application exited with error", "command", command, "error", err)
		}
	}()

	return nil
}

type Launcher struct {
	speaker Speaker
	runner  Runner
	apps    []App
	log     *logger.Logger
}

type LaunchConfig struct {
	Speaker Speaker
	Runner  Runner
	Apps    []App
	Log     *logger.Logger
}

func NewLauncher(cfg *LaunchConfig) (*Launcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Speaker == nil {
		return nil, fmt.Errorf("speaker is nil")
	}

	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is nil")
	}

	l := &Launcher{
		speaker: cfg.Speaker,
		runner:  cfg.Runner,
		apps:    cfg.Apps,
		log:     cfg.Log,
	}

	if len(l.apps) == 0 {
		l.apps = DefaultApps
	}

	if l.log == nil {
		l.log = logger.NewNop()
	}

	return l, nil
}

// Launch starts the first allowlisted application whose keyword occurs in
// appName. Anything else is refused out loud and never reaches the runner.
func (l *Launcher) Launch(ctx context.Context, appName string) error {
	for _, app := range l.apps {
		if !strings.Contains(appName, app.Keyword) {
			continue
		}

		if err := l.runner.Start(app.Command); err != nil {
			l.log.Errorw("error launching application", "app", appName, "command", app.Command, "error", err)

			return l.speaker.Speak(ctx, fmt.Sprintf("Failed to open %s.", appName))
		}

		return nil
	}

	return l.speaker.Speak(ctx, fmt.Sprintf("Sorry, I cannot open %s at the moment.", appName))
}
