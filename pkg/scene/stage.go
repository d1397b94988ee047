package scene

import "sync"

// Stage is the host container overlays are appended to. It owns one lazily
// created singleton mount per sequence family, the current viewport size, and
// at most one resize subscription per family regardless of how many times the
// family remounts.
type Stage struct {
	mu       sync.Mutex
	root     *Node
	viewport Size
	mounts   map[string]*Node
	onResize map[string]func(Size)
}

// NewStage creates a stage with the given initial viewport.
func NewStage(viewport Size) *Stage {
	return &Stage{
		root:     El("div").WithID("interface"),
		viewport: viewport,
		mounts:   make(map[string]*Node),
		onResize: make(map[string]func(Size)),
	}
}

// Root returns the stage's container node.
func (s *Stage) Root() *Node {
	return s.root
}

// Viewport returns the current viewport size.
func (s *Stage) Viewport() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SetViewport updates the viewport and notifies every family's resize
// subscriber.
func (s *Stage) SetViewport(v Size) {
	s.mu.Lock()
	s.viewport = v
	subs := make([]func(Size), 0, len(s.onResize))
	for _, fn := range s.onResize {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// EnsureMounted returns the family's overlay root, creating and attaching it
// via build on first use. Idempotent: repeated calls return the same node and
// never construct a second skeleton.
func (s *Stage) EnsureMounted(family string, build func() *Node) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mount, ok := s.mounts[family]; ok {
		return mount
	}

	var mount *Node
	if build != nil {
		mount = build()
	}
	if mount == nil {
		mount = El("div")
	}
	if mount.ID == "" {
		mount.WithID(family)
	}
	s.root.Append(mount)
	s.mounts[family] = mount
	return mount
}

// Mounted returns the family's overlay root, or nil when not mounted.
func (s *Stage) Mounted(family string) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounts[family]
}

// Clear removes the children of the family's overlay, keeping the root
// attached as the hidden baseline.
func (s *Stage) Clear(family string) {
	s.mu.Lock()
	mount := s.mounts[family]
	s.mu.Unlock()

	if mount != nil {
		mount.RemoveChildren()
	}
}

// Unmount detaches the family's overlay subtree and its resize subscription.
func (s *Stage) Unmount(family string) {
	s.mu.Lock()
	mount := s.mounts[family]
	delete(s.mounts, family)
	delete(s.onResize, family)
	s.mu.Unlock()

	if mount != nil {
		mount.Detach()
	}
}

// OnResize registers the family's resize subscriber. At most one subscriber
// exists per family; repeated registration replaces it instead of
// accumulating listeners.
func (s *Stage) OnResize(family string, fn func(Size)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.onResize, family)
		return
	}
	s.onResize[family] = fn
}

// Fit scales the family's overlay to the viewport, centered, and keeps it
// fitted across viewport changes through the family's single resize
// subscription.
func (s *Stage) Fit(family string, design Size) {
	apply := func(v Size) {
		if mount := s.Mounted(family); mount != nil {
			FitToViewport(v, design).Apply(mount)
		}
	}
	apply(s.Viewport())
	s.OnResize(family, apply)
}

// Find returns the first node in the whole stage matching pred.
func (s *Stage) Find(pred func(*Node) bool) *Node {
	return s.root.Find(pred)
}

// FindByClass returns the first node in the stage carrying the class.
func (s *Stage) FindByClass(class string) *Node {
	return s.root.FindByClass(class)
}
