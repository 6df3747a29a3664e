package runner

import (
	"log/slog"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for loop events. Turn contents are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler replaces the default terminal handler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithRenderer sets the markdown renderer used by the default TextHandler.
// Ignored when WithInputHandler is also given.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithExitText sets the answer sent on the user's behalf when input ends.
func WithExitText(text string) Option {
	return func(r *Runner) {
		r.ExitText = text
	}
}
