package runner

import (
	"context"
	"testing"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/memory"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_LoadOrStart(t *testing.T) {
	store := memory.NewStore()
	bot, err := chatbot.New(
		chatbot.WithStore(store),
		chatbot.WithIDGenerator(func() string { return "generated" }),
	)
	require.NoError(t, err)
	sm := NewSessionManager(bot)
	ctx := context.Background()

	s, reply, loaded, err := sm.LoadOrStart(ctx, "")
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, "generated", s.ID)
	assert.True(t, reply.Outcome.First)

	s, _, loaded, err = sm.LoadOrStart(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, "fresh", s.ID)

	_, err = bot.Send(ctx, s, "25")
	require.NoError(t, err)

	s, reply, loaded, err = sm.LoadOrStart(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, domain.AskFact(domain.FactVehicleYear), reply.Outcome)
	v, ok := s.Facts().Get(domain.FactAge)
	assert.True(t, ok)
	assert.Equal(t, 25, v)
}

func TestSessionManager_ResumeFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "broken", domain.Turn{Seq: 2, Role: domain.RoleUser, Text: "25"}))

	bot, err := chatbot.New(chatbot.WithStore(store))
	require.NoError(t, err)

	_, _, _, err = NewSessionManager(bot).LoadOrStart(ctx, "broken")
	assert.ErrorIs(t, err, chatbot.ErrTranscriptGap)
}
