package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/ghclient"
	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/store"
	"github.com/spiffcs/repowatch/internal/telegram"
	"github.com/spiffcs/repowatch/internal/tui"
	"github.com/spiffcs/repowatch/internal/watch"
)

// taskRuntime bundles TUI-related state that's threaded through the
// fetch and run commands.
type taskRuntime struct {
	useTUI  bool
	tasks   []tui.Task
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *taskRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, tui.WithTasks(rt.tasks))
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *taskRuntime) close() {
	closeTUI(rt.events, rt.tuiDone)
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *taskRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	sendTaskEvent(rt.events, task, status, opts...)
}

// setupRuntime initializes profiling and logging, and returns the runtime
// plus a cleanup function that stops the profiler.
func setupRuntime(opts *Options, tasks []tui.Task) (*taskRuntime, func(), error) {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return nil, nil, err
	}

	useTUI := shouldUseTUI(opts)

	// Suppress logs during TUI to avoid interleaving with the display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	rt := &taskRuntime{useTUI: useTUI, tasks: tasks}
	return rt, profiler.Stop, nil
}

// sendTaskEvent sends a task event to the channel if it exists.
func sendTaskEvent(events chan tui.Event, task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if events == nil {
		return
	}
	tui.SendTaskEvent(events, task, status, opts...)
}

// closeTUI closes the event channel and waits for the TUI to finish.
func closeTUI(events chan tui.Event, tuiDone chan error) {
	if events == nil {
		return
	}
	tui.SendEvent(events, tui.DoneEvent{})
	close(events)
	if tuiDone != nil {
		if err := <-tuiDone; err != nil {
			log.Warn("TUI exited with error", "error", err)
		}
	}
}

// loadConfig loads and validates the merged configuration. Any validation
// failure is fatal to the command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveRepos picks the repositories to operate on: positional arguments
// win, otherwise the configured repos list.
func resolveRepos(cfg *config.Config, args []string) ([]string, error) {
	repos := args
	if len(repos) == 0 {
		repos = cfg.Repos
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("%w: no repositories given; pass owner/name arguments or set repos in the config file", config.ErrInvalid)
	}
	for _, r := range repos {
		if !config.ValidRepo(r) {
			return nil, fmt.Errorf("%w: repo %q is not in owner/name form", config.ErrInvalid, r)
		}
	}
	return repos, nil
}

// openService builds the GitHub client and snapshot store, and wires them
// into a Service. The returned cleanup closes the store.
func openService(ctx context.Context, cfg *config.Config) (*service.Service, *store.Store, func(), error) {
	client := ghclient.NewClient(ctx, cfg.GetGitHubToken())

	st, err := store.Open(cfg.GetStorePath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening snapshot store: %w", err)
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Debug("closing store", "error", err)
		}
	}
	return service.New(client, st), st, cleanup, nil
}

// resolveThresholds merges per-invocation flag overrides on top of the
// configured thresholds.
func resolveThresholds(cfg *config.Config, opts *Options) config.Thresholds {
	t := cfg.GetThresholds()
	if opts.MaxIssues > 0 {
		t.OpenIssues = opts.MaxIssues
	}
	if opts.MaxPRs > 0 {
		t.OpenPRs = opts.MaxPRs
	}
	if opts.StaleDays > 0 {
		t.StalePRDays = opts.StaleDays
	}
	if opts.InactiveDays > 0 {
		t.InactiveDays = opts.InactiveDays
	}
	return t
}

// newNotify builds the alert delivery function. Dry-run prints each
// rendered message to stdout instead of sending it; otherwise missing
// Telegram credentials fail here, before anything is evaluated.
func newNotify(opts *Options) (watch.NotifyFunc, error) {
	if opts.DryRun {
		return func(_ context.Context, text string) error {
			fmt.Println(text)
			fmt.Println()
			return nil
		}, nil
	}

	client, err := telegram.NewFromEnv()
	if err != nil {
		return nil, err
	}
	return client.Send, nil
}

// resolveFormat picks the output format: the flag wins over the config
// default.
func resolveFormat(cfg *config.Config, opts *Options) string {
	if opts.Format != "" {
		return opts.Format
	}
	return cfg.DefaultFormat
}
