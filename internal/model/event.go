package model

type EventType string

const (
	EventParticipantJoined EventType = "PARTICIPANT_JOINED"
	EventParticipantLeft   EventType = "PARTICIPANT_LEFT"
	EventSwipeRecorded     EventType = "SWIPE_RECORDED"
	EventMatchFound        EventType = "MATCH_FOUND"
	EventRoomClosed        EventType = "ROOM_CLOSED"
)

type RoomEvent struct {
	Type     EventType `json:"type"`
	RoomCode string    `json:"room_code"`
	Payload  any       `json:"payload"`
}
