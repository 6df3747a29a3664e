package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
)

// Prompt is printed before every read.
const Prompt = "> "

const (
	retryNotice   = "No pude leer ese mensaje. Por favor, inténtalo de nuevo."
	warningNotice = "Aviso: no se pudo guardar parte de la conversación."
)

// ContentRenderer transforms reply text before it is written (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)

// TextHandler reads answers line by line and writes replies as plain or rendered text.
type TextHandler struct {
	Writer   io.Writer
	Notices  io.Writer
	Renderer ContentRenderer

	lines *linePump
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer sets the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithNoticeWriter sets where warnings and system messages go. Defaults to stderr.
func WithNoticeWriter(w io.Writer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Notices = w
	}
}

// NewTextHandler creates a handler over r and w. Nil values mean stdin and stdout.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer:  w,
		Notices: os.Stderr,
		lines:   newLinePump(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) Output(ctx context.Context, reply chatbot.Reply) error {
	text := reply.Text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = rendered
		}
	}
	if _, err := fmt.Fprintln(h.Writer, strings.TrimSpace(text)); err != nil {
		return err
	}
	if len(reply.Warnings) > 0 {
		return h.SystemOutput(ctx, warningNotice)
	}
	return nil
}

// Input prompts and waits for the next line. Lines that fail sanitization are
// answered with a retry notice and the prompt is shown again.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(h.Writer, Prompt)

		line, err := h.lines.next(ctx)
		if err != nil {
			return "", err
		}

		clean, err := SanitizeInput(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(h.Writer, retryNotice)
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Notices, "[%s]\n", msg)
	return err
}

type lineResult struct {
	text string
	err  error
}

// linePump reads lines on its own goroutine, started on first use, so a pending
// read can be abandoned when ctx is canceled. The channel closes at EOF.
type linePump struct {
	reader *bufio.Reader
	once   sync.Once
	ch     chan lineResult
}

func newLinePump(r io.Reader) *linePump {
	return &linePump{reader: bufio.NewReader(r), ch: make(chan lineResult)}
}

func (p *linePump) next(ctx context.Context) (string, error) {
	p.once.Do(func() { go p.run() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.ch:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

func (p *linePump) run() {
	defer close(p.ch)
	for {
		text, err := p.reader.ReadString('\n')
		if text != "" {
			p.ch <- lineResult{text: text}
		}
		switch {
		case err == nil:
		case err == io.EOF:
			return
		default:
			p.ch <- lineResult{err: err}
			// Backoff so a persistent read failure does not spin.
			time.Sleep(50 * time.Millisecond)
		}
	}
}
