package events

// Kind is the event_type discriminator carried by every event.
type Kind string

const (
	KindConnect       Kind = "connect"
	KindDisconnect    Kind = "disconnect"
	KindHeartbeat     Kind = "heartbeat"
	KindTurnedOn      Kind = "turned_on"
	KindTurnedOff     Kind = "turned_off"
	KindSendPacket    Kind = "send_packet"
	KindReceivePacket Kind = "recieve_packet"
	KindDropPacket    Kind = "drop_packet"

	// KindUpdateGraph is output-only: the full snapshot sent on attachment.
	KindUpdateGraph Kind = "update_graph"
)

// receivePacketAlias is the corrected spelling, accepted on input only.
// Outputs keep the recieve_packet discriminator observers already match on.
const receivePacketAlias = "receive_packet"

// InputKinds lists every kind accepted by Decode.
var InputKinds = []Kind{
	KindConnect,
	KindDisconnect,
	KindHeartbeat,
	KindTurnedOn,
	KindTurnedOff,
	KindSendPacket,
	KindReceivePacket,
	KindDropPacket,
}

// CarriesGraph reports whether outputs of this kind embed a full snapshot.
func (k Kind) CarriesGraph() bool {
	switch k {
	case KindConnect, KindDisconnect, KindTurnedOn, KindTurnedOff, KindUpdateGraph:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
