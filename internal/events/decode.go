package events

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Decoder turns raw JSON payloads into typed input events.
type Decoder struct {
	now func() time.Time
}

// NewDecoder returns a decoder that stamps events lacking a timestamp with
// now(). A nil now uses time.Now.
func NewDecoder(now func() time.Time) *Decoder {
	if now == nil {
		now = time.Now
	}
	return &Decoder{now: now}
}

// Decode parses one input event. Payloads with an unrecognized event_type
// fail with ErrUnknownEventKind; anything else that cannot be decoded or
// validated fails with ErrMalformedInput.
func (d *Decoder) Decode(data []byte) (Input, error) {
	var probe struct {
		EventType *string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if probe.EventType == nil {
		return nil, fmt.Errorf("%w: event_type: field is required", ErrMalformedInput)
	}

	kind := Kind(*probe.EventType)
	if *probe.EventType == receivePacketAlias {
		kind = KindReceivePacket
	}

	switch kind {
	case KindConnect:
		return decodeInput[ConnectNeighbor](d, data)
	case KindDisconnect:
		return decodeInput[DisconnectNeighbor](d, data)
	case KindHeartbeat:
		return decodeInput[Heartbeat](d, data)
	case KindTurnedOn:
		return decodeInput[TurnedOn](d, data)
	case KindTurnedOff:
		return decodeInput[TurnedOff](d, data)
	case KindSendPacket:
		return decodeInput[SendPacket](d, data)
	case KindReceivePacket:
		return decodeInput[ReceivePacket](d, data)
	case KindDropPacket:
		in, err := decodeAs[DropPacket](d, data)
		if err != nil {
			return nil, err
		}
		if in.Reason == "" {
			in.Reason = DefaultDropReason
		}
		return in, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, *probe.EventType)
	}
}

// decodeInput is decodeAs with the result boxed, so a failed decode yields a
// nil Input rather than a zero-valued variant.
func decodeInput[T Input, P interface {
	*T
	envelope() *Envelope
}](d *Decoder, data []byte) (Input, error) {
	v, err := decodeAs[T, P](d, data)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeAs[T any, P interface {
	*T
	envelope() *Envelope
}](d *Decoder, data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if err := validate.Struct(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformedInput, formatValidationError(err))
	}
	env := P(&v).envelope()
	if env.Timestamp == "" {
		env.Timestamp = FormatTime(d.now())
	}
	return v, nil
}

func (e *Envelope) envelope() *Envelope { return e }

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
