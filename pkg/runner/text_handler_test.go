package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf,
		WithTextHandlerRenderer(func(s string) (string, error) {
			return "Rendered: " + s, nil
		}),
	)

	err := handler.Output(context.Background(), chatbot.Reply{
		Outcome: domain.AskFact(domain.FactAge),
		Text:    "¿Cuántos años tienes?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rendered: ¿Cuántos años tienes?\n", outBuf.String())
}

func TestTextHandler_Output_RendererErrorKeepsText(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf,
		WithTextHandlerRenderer(func(string) (string, error) {
			return "", errors.New("boom")
		}),
	)

	require.NoError(t, handler.Output(context.Background(), chatbot.Reply{Text: "hola"}))
	assert.Equal(t, "hola\n", outBuf.String())
}

func TestTextHandler_Output_Warnings(t *testing.T) {
	outBuf := &bytes.Buffer{}
	notices := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf, WithNoticeWriter(notices))

	err := handler.Output(context.Background(), chatbot.Reply{
		Text:     "hola",
		Warnings: []error{chatbot.ErrTranscriptWrite},
	})
	require.NoError(t, err)
	assert.Equal(t, "hola\n", outBuf.String())
	assert.Contains(t, notices.String(), "no se pudo guardar")
	assert.NotContains(t, notices.String(), chatbot.ErrTranscriptWrite.Error())
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  tengo 25 años \n2020\n"), outBuf)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tengo 25 años", val)

	val, err = handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2020", val)

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, strings.Repeat(Prompt, 3), outBuf.String())
}

func TestTextHandler_Input_LastLineWithoutNewline(t *testing.T) {
	handler := NewTextHandler(strings.NewReader("45000"), io.Discard)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "45000", val)
}

func TestTextHandler_Input_RetriesInvalidLine(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("\xff\xfe\n25\n"), outBuf)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25", val)
	assert.Contains(t, outBuf.String(), "inténtalo de nuevo")
}

func TestTextHandler_Input_ContextCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	handler := NewTextHandler(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
