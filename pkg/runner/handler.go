package runner

import (
	"context"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
)

// IOHandler is how the Runner talks to the user. TextHandler serves terminals and
// JSONHandler serves scripts; tests provide their own.
type IOHandler interface {
	// Output shows one reply, including a notice when it carries warnings.
	Output(ctx context.Context, reply chatbot.Reply) error

	// Input blocks for the next answer. It returns io.EOF once input is exhausted
	// and ctx.Err() when ctx is canceled first.
	Input(ctx context.Context) (string, error)

	// SystemOutput shows a status message that is not part of the conversation.
	SystemOutput(ctx context.Context, msg string) error
}
