package provenance

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireEvent is the serialized shape shared with the export manifest:
// {"step": ..., "parameters": {...}, "note": ..., "timestamp": ...}.
type wireEvent struct {
	Step       Kind            `json:"step"`
	Parameters json.RawMessage `json:"parameters"`
	Note       string          `json:"note,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MarshalJSON encodes the event with its typed payload inlined under
// "parameters".
func (e Event) MarshalJSON() ([]byte, error) {
	var params json.RawMessage
	var err error
	switch payload := e.Payload.(type) {
	case nil:
		params = json.RawMessage("{}")
	case Generic:
		params, err = json.Marshal(payload.Params)
	default:
		params, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal %s parameters: %w", e.Kind, err)
	}
	return json.Marshal(wireEvent{
		Step:       e.Kind,
		Parameters: params,
		Note:       e.Note,
		Timestamp:  e.Time,
	})
}

// UnmarshalJSON decodes an event, dispatching the parameter object to the
// payload variant matching the step kind. Unknown kinds round-trip through
// Generic.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	payload, err := decodePayload(wire.Step, wire.Parameters)
	if err != nil {
		return err
	}

	e.Kind = wire.Step
	e.Time = wire.Timestamp
	e.Note = wire.Note
	e.Payload = payload
	return nil
}

func decodePayload(kind Kind, params json.RawMessage) (Payload, error) {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	unmarshal := func(v Payload) (Payload, error) {
		if err := json.Unmarshal(params, v); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", kind, err)
		}
		return v, nil
	}

	switch kind {
	case KindIngestASCII:
		p, err := unmarshal(&IngestASCII{})
		if err != nil {
			return nil, err
		}
		return *p.(*IngestASCII), nil
	case KindIngestFITS:
		p, err := unmarshal(&IngestFITS{})
		if err != nil {
			return nil, err
		}
		return *p.(*IngestFITS), nil
	case KindUnitConvert:
		p, err := unmarshal(&UnitConvert{})
		if err != nil {
			return nil, err
		}
		return *p.(*UnitConvert), nil
	case KindAirToVacuum:
		p, err := unmarshal(&AirToVacuum{})
		if err != nil {
			return nil, err
		}
		return *p.(*AirToVacuum), nil
	case KindFetchArchiveProduct:
		p, err := unmarshal(&FetchArchiveProduct{})
		if err != nil {
			return nil, err
		}
		return *p.(*FetchArchiveProduct), nil
	case KindResolutionMatch:
		p, err := unmarshal(&ResolutionMatch{})
		if err != nil {
			return nil, err
		}
		return *p.(*ResolutionMatch), nil
	case KindDifferential:
		p, err := unmarshal(&Differential{})
		if err != nil {
			return nil, err
		}
		return *p.(*Differential), nil
	default:
		var raw map[string]any
		if err := json.Unmarshal(params, &raw); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", kind, err)
		}
		return Generic{Step: kind, Params: raw}, nil
	}
}

// EncodeLog serializes an ordered event log.
func EncodeLog(events []Event) ([]byte, error) {
	return json.Marshal(events)
}

// DecodeLog restores an ordered event log.
func DecodeLog(data []byte) ([]Event, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}
