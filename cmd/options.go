package cmd

// Options holds the shared command-line options for the repowatch CLI.
type Options struct {
	Format    string
	CSVPath   string
	Interval  string
	Verbosity int
	DryRun    bool
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Threshold overrides (0 = use config value)
	MaxIssues    int
	MaxPRs       int
	StaleDays    int
	InactiveDays int

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithCSVPath sets the CSV export destination for fetched records.
func WithCSVPath(path string) Option {
	return func(o *Options) {
		o.CSVPath = path
	}
}

// WithInterval sets the watch refresh interval (e.g., "90s", "15m", "1h").
func WithInterval(interval string) Option {
	return func(o *Options) {
		o.Interval = interval
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithDryRun prints rendered alerts instead of delivering them.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithMaxIssues overrides the open-issue threshold for this invocation.
func WithMaxIssues(n int) Option {
	return func(o *Options) {
		o.MaxIssues = n
	}
}

// WithMaxPRs overrides the open-PR threshold for this invocation.
func WithMaxPRs(n int) Option {
	return func(o *Options) {
		o.MaxPRs = n
	}
}

// WithStaleDays overrides the stale-PR age threshold for this invocation.
func WithStaleDays(n int) Option {
	return func(o *Options) {
		o.StaleDays = n
	}
}

// WithInactiveDays overrides the inactivity threshold for this invocation.
func WithInactiveDays(n int) Option {
	return func(o *Options) {
		o.InactiveDays = n
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
