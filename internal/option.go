package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*App)

// App holds the wiring shared by every command.
type App struct {
	config *Config
	logger *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithLogger overrides the default JSON logger, mainly for tests.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}
