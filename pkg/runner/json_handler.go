package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// Message is one line emitted by JSONHandler.
type Message struct {
	Kind          domain.OutcomeKind   `json:"kind"`
	Fact          domain.FactName      `json:"fact,omitempty"`
	Clarification domain.Clarification `json:"clarification,omitempty"`
	Eligible      *bool                `json:"eligible,omitempty"`
	Reasons       []domain.Reason      `json:"reasons,omitempty"`
	EndReason     domain.EndReason     `json:"end_reason,omitempty"`
	Text          string               `json:"text"`
	Final         bool                 `json:"final"`
	Warnings      []string             `json:"warnings,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// NewMessage flattens a reply into its wire form.
func NewMessage(reply chatbot.Reply) Message {
	out := reply.Outcome
	msg := Message{
		Kind:          out.Kind,
		Fact:          out.Fact,
		Clarification: out.Clarification,
		EndReason:     out.EndReason,
		Text:          reply.Text,
		Final:         reply.Final(),
	}
	if out.Verdict != nil {
		eligible := out.Verdict.Eligible
		msg.Eligible = &eligible
		msg.Reasons = out.Verdict.Reasons
	}
	for _, w := range reply.Warnings {
		msg.Warnings = append(msg.Warnings, w.Error())
	}
	return msg
}

func (h *JSONHandler) Output(ctx context.Context, reply chatbot.Reply) error {
	return h.Encoder.Encode(NewMessage(reply))
}

// Input accepts a JSON string, an object with a "text" field, or a raw line.
// Lines that fail sanitization are reported with SystemOutput and skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line, err := h.Reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		clean, err := SanitizeInput(decodeLine(strings.TrimSpace(line)))
		if err != nil {
			if serr := h.SystemOutput(ctx, err.Error()); serr != nil {
				return "", serr
			}
			continue
		}
		return clean, nil
	}
}

func decodeLine(line string) string {
	var val string
	if err := json.Unmarshal([]byte(line), &val); err == nil {
		return val
	}

	var obj struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.Text != nil {
		return *obj.Text
	}

	return line
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"kind": "system", "text": msg})
}
