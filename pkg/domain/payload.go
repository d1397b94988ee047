package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodePayload merges a play payload onto a theme's baseline defaults.
// The target should be pre-populated with default values; only fields present
// in the payload are overwritten. Unknown fields are ignored, matching the
// tolerant merge the control panel relies on. Type mismatches surface as
// ErrInvalidPayload so the triggering client gets a descriptive failure
// instead of a half-applied sequence.
func DecodePayload(p Payload, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("building payload decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(p)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
