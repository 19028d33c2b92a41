package realtime

import (
	"encoding/json"
)

// Wire event names, client <-> server.
const (
	EventJoinRoom      = "join_room"
	EventSendMessage   = "send_message"
	EventJoinedRoom    = "joined_room"
	EventSendedMessage = "sended_message"
)

// Frame is the wire format for every application event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Party identifies one side of a message.
type Party struct {
	ID string `json:"id"`
}

// JoinRoomPayload is the body of a join_room event.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// SendMessagePayload is the body of a send_message event. The message itself
// is opaque to the router.
type SendMessagePayload struct {
	RoomID   string          `json:"roomId,omitempty"`
	Message  json.RawMessage `json:"message"`
	Sender   Party           `json:"sender"`
	Receiver Party           `json:"receiver"`
}

// JoinedRoomPayload acknowledges a join_room to the joining connection.
type JoinedRoomPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendedMessagePayload is what every resolved connection receives for a
// send_message.
type SendedMessagePayload struct {
	From    Party           `json:"from"`
	Message json.RawMessage `json:"message"`
}

func marshalFrame(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return nil, false
	}
	return frame, true
}
