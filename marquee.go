package marquee

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/internal/sequencer"
	"github.com/duvall/marquee/pkg/audio"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/observability"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/queue"
	"github.com/duvall/marquee/pkg/registry"
	"github.com/duvall/marquee/pkg/relay"
	"github.com/duvall/marquee/pkg/scene"
	"github.com/duvall/marquee/pkg/themes"
	"github.com/duvall/marquee/pkg/timing"
	"github.com/duvall/marquee/pkg/vn"
)

// settingsNamespace is where presets persist in the settings store.
const settingsNamespace = "marquee.presets"

// Director is the high-level entry point: it owns the stage, the per-family
// runners, the broadcast relay, the cut-in queue and the visual-novel
// store, and exposes the command surface the control panel calls.
type Director struct {
	clientID string
	stage    *scene.Stage
	bus      ports.MessageBus
	media    ports.MediaPlayer
	settings ports.SettingsStore
	roster   ports.Roster
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	tick     time.Duration

	reg     *registry.Registry
	relay   *relay.Relay
	vnStore *vn.Store

	mu     sync.Mutex
	queues map[string]*queue.Manager
}

// Option defines a functional option for configuring the Director.
type Option func(*Director)

// WithBus connects the Director to a message bus. Without one, sequences
// play locally only.
func WithBus(bus ports.MessageBus) Option {
	return func(d *Director) {
		d.bus = bus
	}
}

// WithMediaPlayer sets the audio backend. Without one, cues play silence.
func WithMediaPlayer(media ports.MediaPlayer) Option {
	return func(d *Director) {
		d.media = media
	}
}

// WithSettings sets the preset store.
func WithSettings(store ports.SettingsStore) Option {
	return func(d *Director) {
		d.settings = store
	}
}

// WithRoster connects the host's performer data.
func WithRoster(roster ports.Roster) Option {
	return func(d *Director) {
		d.roster = roster
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Director) {
		d.logger = logger
	}
}

// WithHooks registers lifecycle hooks observing every runner.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Director) {
		d.hooks = domain.JoinHooks(d.hooks, hooks)
	}
}

// WithMetrics wires a Prometheus instrument set into the runners and the
// cut-in queue.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Director) {
		d.metrics = m
	}
}

// WithViewport sets the initial stage viewport.
func WithViewport(w, h float64) Option {
	return func(d *Director) {
		d.stage = scene.NewStage(scene.Size{W: w, H: h})
	}
}

// WithTick sets the skip-poll granularity of phase holds. Tests shrink it.
func WithTick(tick time.Duration) Option {
	return func(d *Director) {
		d.tick = tick
	}
}

// WithClientID overrides the generated client id identifying this process
// on the bus.
func WithClientID(id string) Option {
	return func(d *Director) {
		d.clientID = id
	}
}

// New creates a Director.
func New(opts ...Option) (*Director, error) {
	d := &Director{
		clientID: uuid.NewString(),
		stage:    scene.NewStage(scene.Size{W: 1920, H: 1080}),
		logger:   logging.NewNop(),
		tick:     timing.DefaultTick,
		reg:      registry.New(),
		queues:   make(map[string]*queue.Manager),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.metrics != nil {
		d.hooks = domain.JoinHooks(d.metrics.Hooks(), d.hooks)
	}

	d.vnStore = vn.NewStore(d.bus, d.clientID, vn.WithLogger(d.logger))
	d.relay = relay.New(d.bus, d.reg, d.clientID,
		relay.WithLogger(d.logger),
		relay.WithVN(d.vnStore),
	)
	d.relay.Start()
	return d, nil
}

// Close detaches the Director from the bus.
func (d *Director) Close() {
	d.relay.Stop()
}

// ClientID returns this client's id on the bus.
func (d *Director) ClientID() string {
	return d.clientID
}

// Stage returns the scene the overlays render into.
func (d *Director) Stage() *scene.Stage {
	return d.stage
}

// Registry returns the sequence registry.
func (d *Director) Registry() *registry.Registry {
	return d.reg
}

// Families lists the registered sequence families.
func (d *Director) Families() []string {
	return d.reg.Families()
}

// Queued reports whether a family drains through the cut-in queue.
func (d *Director) Queued(family string) bool {
	return d.reg.Queued(family)
}

// VN returns the visual-novel state store.
func (d *Director) VN() *vn.Store {
	return d.vnStore
}

// Register adds a sequence family, creating its runner and, for queued
// families, its FIFO queue.
func (d *Director) Register(seq registry.Sequence) error {
	player := audio.NewCuePlayer(d.media, audio.WithLogger(d.logger))
	runner := sequencer.NewRunner(seq.Family, d.stage, player,
		sequencer.WithLogger(d.logger),
		sequencer.WithHooks(d.hooks),
		sequencer.WithTick(d.tick),
	)
	if err := d.reg.Register(seq, runner); err != nil {
		return err
	}

	if seq.Queued {
		var qopts []queue.Option
		qopts = append(qopts, queue.WithLogger(d.logger))
		if d.metrics != nil {
			gauge := d.metrics.QueueDepth
			qopts = append(qopts, queue.WithDepthFunc(func(depth int) {
				gauge.Set(float64(depth))
			}))
		}
		q := queue.NewManager(
			func(ctx context.Context, payload domain.Payload) error {
				return d.reg.Play(ctx, seq.Family, payload)
			},
			runner.Skip,
			qopts...,
		)
		d.mu.Lock()
		d.queues[seq.Family] = q
		d.mu.Unlock()
		d.relay.BindQueue(seq.Family, q)
	}
	return nil
}

// RegisterStock registers the shipped themes: the Sin City and Machete
// intros, the JoJo ending, the group intro, and the queued cut-in family.
func (d *Director) RegisterStock() error {
	stock := []registry.Sequence{
		themes.SinCity(),
		themes.Machete(),
		themes.JojoEnding(),
		themes.GroupIntro(),
		themes.Cutin(),
	}
	for _, seq := range stock {
		if err := d.Register(seq); err != nil {
			return err
		}
	}
	return nil
}

// Play triggers a sequence on every client. The local timeline starts
// immediately; queued families enqueue instead. Returns domain.ErrBusy when
// the family is single-flight and already on stage.
func (d *Director) Play(ctx context.Context, family string, payload domain.Payload) error {
	return d.relay.Play(ctx, family, payload)
}

// Skip cancels a family's run on every client.
func (d *Director) Skip(ctx context.Context, family string) {
	d.relay.Skip(ctx, family)
}

// Pending returns the depth of a queued family's queue.
func (d *Director) Pending(family string) int {
	if q := d.queue(family); q != nil {
		return q.Pending()
	}
	return 0
}

// StopQueue clears a queued family's backlog and cancels its active run.
func (d *Director) StopQueue(family string) {
	if q := d.queue(family); q != nil {
		q.StopAll()
	}
}

// Roster returns the host's performer data, or nil when not connected.
func (d *Director) Roster() ports.Roster {
	return d.roster
}

// Bus returns the message bus, or nil in local-only mode.
func (d *Director) Bus() ports.MessageBus {
	return d.bus
}

// SavePreset persists a named payload preset as an opaque blob.
func (d *Director) SavePreset(ctx context.Context, name string, payload domain.Payload) error {
	if d.settings == nil {
		return fmt.Errorf("no settings store configured")
	}
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding preset %s: %w", name, err)
	}
	return d.settings.Set(ctx, settingsNamespace, name, blob)
}

// LoadPreset retrieves a named payload preset.
func (d *Director) LoadPreset(ctx context.Context, name string) (domain.Payload, error) {
	if d.settings == nil {
		return nil, fmt.Errorf("no settings store configured")
	}
	blob, err := d.settings.Get(ctx, settingsNamespace, name)
	if err != nil {
		return nil, err
	}
	var payload domain.Payload
	if err := json.Unmarshal(blob, &payload); err != nil {
		return nil, fmt.Errorf("decoding preset %s: %w", name, err)
	}
	return payload, nil
}

// DeletePreset removes a named preset. Removing an absent preset is not an
// error.
func (d *Director) DeletePreset(ctx context.Context, name string) error {
	if d.settings == nil {
		return fmt.Errorf("no settings store configured")
	}
	return d.settings.Delete(ctx, settingsNamespace, name)
}

// ListPresets returns the saved preset names.
func (d *Director) ListPresets(ctx context.Context) ([]string, error) {
	if d.settings == nil {
		return nil, nil
	}
	return d.settings.List(ctx, settingsNamespace)
}

func (d *Director) queue(family string) *queue.Manager {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queues[family]
}
