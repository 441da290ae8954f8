package constants

// Redis key formats
const (
	// Dispatch rate limiting
	KeyLastEmergency = "user:%s:lastEmergency" // Format: user:{user_id}:lastEmergency

	// Responder presence
	KeyResponderGeo = "responders:geo" // geo set of available responder positions

	// Realtime fan-out channels
	ChannelRoom        = "room:%s"      // Format: room:{room_id}
	ChannelUser        = "room:user:%s" // Format: room:user:{user_id}
	ChannelRoomPattern = "room:*"       // PSUBSCRIBE pattern covering both
)

// Well-known room names
const (
	RoomResponders = "responders"
)
