package dsl

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/scene"
)

// Duration parses YAML durations given either as Go duration strings
// ("2.5s", "400ms") or as bare millisecond numbers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ms int64
	if err := node.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// File is the YAML form of a sequence definition: phases whose mutations
// are declarative node operations instead of code.
type File struct {
	Family   string      `yaml:"family"`
	Design   scene.Size  `yaml:"design"`
	TailFade Duration    `yaml:"tail_fade"`
	Teardown string      `yaml:"teardown"`
	Queued   bool        `yaml:"queued"`
	Phases   []FilePhase `yaml:"phases"`
}

// FilePhase is one YAML phase.
type FilePhase struct {
	Name  string            `yaml:"name"`
	Hold  Duration          `yaml:"hold"`
	Audio []domain.AudioCue `yaml:"audio"`
	Clear bool              `yaml:"clear"`
	Apply []NodeOp          `yaml:"apply"`
}

// NodeOp finds or creates the named child of the overlay root and applies
// classes, text and style to it. TextFrom pulls the text from a payload
// field, so authored files can interpolate campaign names and titles
// without any string templating.
type NodeOp struct {
	Node        string            `yaml:"node"`
	Tag         string            `yaml:"tag"`
	Classes     []string          `yaml:"classes"`
	RemoveClass []string          `yaml:"remove_class"`
	Text        string            `yaml:"text"`
	TextFrom    string            `yaml:"text_from"`
	Style       map[string]string `yaml:"style"`
}

// Load reads a YAML sequence file.
func Load(r io.Reader) (domain.SequenceDefinition, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return domain.SequenceDefinition{}, fmt.Errorf("parsing sequence file: %w", err)
	}
	return f.Definition()
}

// LoadFile reads a YAML sequence definition from disk.
func LoadFile(path string) (domain.SequenceDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SequenceDefinition{}, fmt.Errorf("opening sequence file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Definition compiles the file into a runnable definition.
func (f File) Definition() (domain.SequenceDefinition, error) {
	b := New(f.Family)
	b.Design(f.Design.W, f.Design.H)
	b.TailFade(time.Duration(f.TailFade))
	if f.Queued {
		b.Queued()
	}
	switch f.Teardown {
	case "", "unmount":
		b.Teardown(domain.TeardownUnmount)
	case "clear":
		b.Teardown(domain.TeardownClear)
	default:
		return domain.SequenceDefinition{}, fmt.Errorf("unknown teardown %q", f.Teardown)
	}

	for _, phase := range f.Phases {
		ops := phase.Apply
		clear := phase.Clear
		pb := b.Phase(phase.Name, func(c *domain.Context) {
			if clear {
				c.Root.RemoveChildren()
			}
			for _, op := range ops {
				op.applyTo(c)
			}
		})
		pb.Hold(time.Duration(phase.Hold))
		for _, cue := range phase.Audio {
			if cue.Loop {
				pb.LoopCue(cue.Src, cue.Volume)
			} else {
				pb.Cue(cue.Src, cue.Volume)
			}
		}
	}

	return b.Build()
}

func (op NodeOp) applyTo(c *domain.Context) {
	target := c.Root
	if op.Node != "" {
		target = c.Root.FindByID(op.Node)
		if target == nil {
			tag := op.Tag
			if tag == "" {
				tag = "div"
			}
			target = scene.El(tag).WithID(op.Node)
			c.Root.Append(target)
		}
	}

	for _, class := range op.Classes {
		if !target.HasClass(class) {
			target.Class(class)
		}
	}
	for _, class := range op.RemoveClass {
		target.RemoveClass(class)
	}
	if op.TextFrom != "" {
		target.SetText(c.Payload.String(op.TextFrom, op.Text))
	} else if op.Text != "" {
		target.SetText(op.Text)
	}
	for k, v := range op.Style {
		target.SetStyle(k, v)
	}
}
