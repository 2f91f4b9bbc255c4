package oob

// EventType classifies a structured update worth mirroring to an OOB
// capable client alongside the narration text.
type EventType int

const (
	// EvText is plain narration with no OOB mapping.
	EvText EventType = iota
	// EvRoomText is speech or an emote heard in the room.
	EvRoomText
	// EvPrivateText is a message addressed to this player only.
	EvPrivateText
	// EvRoom is a location change (look, movement, teleport).
	EvRoom
	// EvLogin and EvLogout are session lifecycle markers.
	EvLogin
	EvLogout
	// EvVitals carries the character sheet numbers.
	EvVitals
)

// Event is one structured update. Text is the narration as shown to
// text-only clients; Data holds the structured payload for GMCP.
type Event struct {
	Type  EventType
	Actor string
	Text  string
	Data  map[string]any
}
