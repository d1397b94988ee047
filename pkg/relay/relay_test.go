package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvall/marquee/internal/sequencer"
	"github.com/duvall/marquee/pkg/adapters/memory"
	"github.com/duvall/marquee/pkg/audio"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/queue"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/scene"
	"github.com/duvall/marquee/pkg/vn"
)

// client bundles one simulated peer: its own stage, registry and relay on
// the shared hub.
type client struct {
	stage *scene.Stage
	reg   *registry.Registry
	relay *Relay
	vn    *vn.Store
}

func newClient(t *testing.T, hub *memory.Hub, id string) *client {
	t.Helper()
	bus := hub.Join()
	c := &client{
		stage: scene.NewStage(scene.Size{W: 1920, H: 1080}),
		reg:   registry.New(),
		vn:    vn.NewStore(bus, id),
	}
	c.relay = New(bus, c.reg, id, WithVN(c.vn))
	c.relay.Start()
	t.Cleanup(c.relay.Stop)
	return c
}

func (c *client) register(t *testing.T, seq registry.Sequence) *sequencer.Runner {
	t.Helper()
	runner := sequencer.NewRunner(seq.Family, c.stage, audio.NewCuePlayer(nil),
		sequencer.WithTick(2*time.Millisecond))
	require.NoError(t, c.reg.Register(seq, runner))
	return runner
}

func introSequence(hold time.Duration) registry.Sequence {
	return registry.Static(domain.SequenceDefinition{
		Family: "intro",
		Phases: []domain.Phase{{Name: "title", Hold: hold}},
	})
}

func TestPlay_ReachesEveryClient(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")
	b := newClient(t, hub, "client-b")
	a.register(t, introSequence(60*time.Millisecond))
	runnerB := b.register(t, introSequence(60*time.Millisecond))

	require.NoError(t, a.relay.Play(context.Background(), "intro", domain.Payload{"campaignName": "x"}))

	// The trigger starts its own timeline without waiting for an echo.
	require.Eventually(t, func() bool { return a.stage.Mounted("intro") != nil },
		time.Second, 2*time.Millisecond)

	require.Eventually(t, func() bool { return runnerB.Playing() }, time.Second, 2*time.Millisecond)
	assert.NotNil(t, b.stage.Mounted("intro"))
}

func TestPlay_UnknownFamily(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")

	err := a.relay.Play(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownSequence)
}

func TestPlay_LocalBusySurfaces(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")
	a.register(t, introSequence(10*time.Second))

	require.NoError(t, a.relay.Play(context.Background(), "intro", nil))
	err := a.relay.Play(context.Background(), "intro", nil)
	assert.ErrorIs(t, err, domain.ErrBusy)

	a.relay.Skip(context.Background(), "intro")
}

func TestDispatch_RemoteBusyIsSilent(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")
	b := newClient(t, hub, "client-b")
	a.register(t, introSequence(10*time.Second))
	runnerB := b.register(t, introSequence(10*time.Second))

	// B is already showing its own run when A's broadcast arrives.
	require.NoError(t, b.reg.Start(context.Background(), "intro", nil))
	require.NoError(t, a.relay.Play(context.Background(), "intro", nil))

	// The peer drops the duplicate the way a local repeat trigger would.
	assert.True(t, runnerB.Playing())

	a.relay.Skip(context.Background(), "intro")
	require.Eventually(t, func() bool { return !runnerB.Playing() }, time.Second, 2*time.Millisecond)
}

func TestSkip_TearsDownEveryClient(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")
	b := newClient(t, hub, "client-b")
	runnerA := a.register(t, introSequence(10*time.Second))
	runnerB := b.register(t, introSequence(10*time.Second))

	require.NoError(t, a.relay.Play(context.Background(), "intro", nil))
	require.Eventually(t, func() bool { return runnerB.Playing() }, time.Second, 2*time.Millisecond)

	b.relay.Skip(context.Background(), "intro")

	require.Eventually(t, func() bool { return !runnerA.Playing() && !runnerB.Playing() },
		time.Second, 2*time.Millisecond)
	assert.Nil(t, a.stage.Mounted("intro"))
	assert.Nil(t, b.stage.Mounted("intro"))
}

func TestQueuedFamily_EnqueuesEverywhere(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")
	b := newClient(t, hub, "client-b")

	cutin := registry.Sequence{
		Family: "cutin",
		Queued: true,
		Build: func(domain.Payload) (domain.SequenceDefinition, error) {
			return domain.SequenceDefinition{
				Family:   "cutin",
				Teardown: domain.TeardownClear,
				Phases:   []domain.Phase{{Name: "card", Hold: 5 * time.Millisecond}},
			}, nil
		},
	}

	for _, c := range []*client{a, b} {
		runner := c.register(t, cutin)
		q := queue.NewManager(
			func(ctx context.Context, p domain.Payload) error { return c.reg.Play(ctx, "cutin", p) },
			runner.Skip,
			queue.WithSettle(time.Millisecond),
		)
		c.relay.BindQueue("cutin", q)
	}

	require.NoError(t, a.relay.Play(context.Background(), "cutin", domain.Payload{"name": "Marv"}))
	require.NoError(t, a.relay.Play(context.Background(), "cutin", domain.Payload{"name": "Dwight"}))

	// Both clients drain their own copy of the queue.
	require.Eventually(t, func() bool {
		return b.stage.Mounted("cutin") != nil
	}, time.Second, 2*time.Millisecond)
}

func TestDispatch_RoutesVNState(t *testing.T) {
	hub := memory.NewHub()
	a := newClient(t, hub, "client-a")
	b := newClient(t, hub, "client-b")

	a.vn.SetBackground(context.Background(), "x.png")

	assert.Equal(t, "x.png", b.vn.GetState().Background)
}
