package domain

import "encoding/json"

// Bus actions dispatched by the relay. The triggering client runs its
// sequence immediately and emits the broadcast; peers pattern-match Action
// and mirror the local trigger.
const (
	ActionPlay    = "sequence.play"
	ActionSkip    = "sequence.skip"
	ActionVNState = "vn.state"
)

// Message is the envelope for every broadcast between clients. Payloads are
// opaque JSON blobs; the sequencer never inspects them beyond routing.
type Message struct {
	Action  string          `json:"action"`
	Family  string          `json:"family,omitempty"`
	Sender  string          `json:"sender,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlayMessage builds a play broadcast for the given family.
func PlayMessage(sender, family string, payload Payload) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Action: ActionPlay, Family: family, Sender: sender, Payload: raw}, nil
}

// SkipMessage builds a skip broadcast for the given family.
func SkipMessage(sender, family string) Message {
	return Message{Action: ActionSkip, Family: family, Sender: sender}
}
