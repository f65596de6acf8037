package generator

import (
	"go.uber.org/zap"
)

const (
	// DefaultTarget is the back end used when none is configured.
	DefaultTarget = "cpp"
	// DefaultConcurrency bounds the number of entries lowered and emitted at once.
	DefaultConcurrency = 4
)

// Option configures a Generator.
type Option func(o *Options)

// Options are the settings of one Generator.
type Options struct {
	Logger      *zap.Logger
	Target      string
	Prefix      string
	Concurrency int
	WrapWidth   int
	// Select is a JSONPath expression restricting which entries are emitted.
	Select string
}

func defaultOptions() Options {
	return Options{
		Logger:      zap.NewNop(),
		Target:      DefaultTarget,
		Concurrency: DefaultConcurrency,
	}
}

// WithLogger sets the logger. A nil logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.Logger = logger
	}
}

// WithTarget selects the back end by its registered name.
func WithTarget(target string) Option {
	return func(o *Options) {
		o.Target = target
	}
}

// WithPrefix sets the output prefix units are placed under.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithConcurrency bounds parallel emission. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = max(n, 1)
	}
}

// WithWrapWidth sets the doc comment column.
func WithWrapWidth(width int) Option {
	return func(o *Options) {
		o.WrapWidth = width
	}
}

// WithSelect restricts emission to the entries matched by a JSONPath expression.
// Every entry is still registered, so references to unselected entries resolve.
func WithSelect(expr string) Option {
	return func(o *Options) {
		o.Select = expr
	}
}
