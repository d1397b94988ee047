package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
)

func TestHub_NeverEchoesToSender(t *testing.T) {
	hub := NewHub()
	a := hub.Join()
	b := hub.Join()
	c := hub.Join()

	var gotA, gotB, gotC []string
	a.On(func(m domain.Message) { gotA = append(gotA, m.Action) })
	b.On(func(m domain.Message) { gotB = append(gotB, m.Action) })
	c.On(func(m domain.Message) { gotC = append(gotC, m.Action) })

	require.NoError(t, a.Emit(context.Background(), domain.Message{Action: "sequence.play"}))

	assert.Empty(t, gotA, "the emitting endpoint must not hear its own message")
	assert.Equal(t, []string{"sequence.play"}, gotB)
	assert.Equal(t, []string{"sequence.play"}, gotC)
}

func TestBus_Unsubscribe(t *testing.T) {
	hub := NewHub()
	a := hub.Join()
	b := hub.Join()

	got := 0
	off := b.On(func(domain.Message) { got++ })

	require.NoError(t, a.Emit(context.Background(), domain.Message{Action: "x"}))
	off()
	require.NoError(t, a.Emit(context.Background(), domain.Message{Action: "x"}))

	assert.Equal(t, 1, got)
}

func TestBus_Standalone(t *testing.T) {
	b := NewBus()
	got := 0
	b.On(func(domain.Message) { got++ })

	require.NoError(t, b.Emit(context.Background(), domain.Message{Action: "x"}))
	assert.Zero(t, got, "a peerless endpoint emits into the void")
}

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "marquee.presets", "missing")
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)

	require.NoError(t, s.Set(ctx, "marquee.presets", "finale", []byte(`{"campaignName":"x"}`)))

	got, err := s.Get(ctx, "marquee.presets", "finale")
	require.NoError(t, err)
	assert.JSONEq(t, `{"campaignName":"x"}`, string(got))

	keys, err := s.List(ctx, "marquee.presets")
	require.NoError(t, err)
	assert.Equal(t, []string{"finale"}, keys)

	require.NoError(t, s.Delete(ctx, "marquee.presets", "finale"))
	_, err = s.Get(ctx, "marquee.presets", "finale")
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete(ctx, "marquee.presets", "finale"))
}

func TestStore_ValuesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, s.Set(ctx, "ns", "k", value))
	value[0] = 'X'

	got, err := s.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, err := s.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestRoster(t *testing.T) {
	r := NewRoster(
		ports.Performer{ID: "1", Name: "Marv"},
		ports.Performer{ID: "2", Name: "Dwight"},
	)
	ctx := context.Background()

	_, err := r.Selected(ctx)
	assert.ErrorIs(t, err, ErrNoSelection)

	players, err := r.ActivePlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 2)

	r.Select(players[1])
	sel, err := r.Selected(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dwight", sel.Name)
}
