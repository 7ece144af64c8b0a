package domain

import "time"

// Room is a named, independently addressable message channel. Rooms are
// immutable after creation; the store owns their lifecycle.
type Room struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for the Room model.
func (Room) TableName() string {
	return "rooms"
}

// Message is one persisted chat message. The id is assigned by the store and
// increases monotonically; history ordering is (timestamp, id) ascending.
type Message struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"size:64;not null;index" json:"room_id"`
	Sender    string    `gorm:"not null" json:"sender"`
	Content   string    `gorm:"not null" json:"content"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// TableName returns the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// WireMessage is the payload delivered to connected clients. It mirrors
// Message except that the id is nullable: a message injected without
// persistence has no store-assigned id and is broadcast with id null.
type WireMessage struct {
	ID        *int64    `json:"id"`
	RoomID    string    `json:"room_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Wire converts a persisted message into its broadcast form.
func (m *Message) Wire() *WireMessage {
	id := m.ID
	return &WireMessage{
		ID:        &id,
		RoomID:    m.RoomID,
		Sender:    m.Sender,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

// NewTransientMessage builds a broadcast-only message that is never written
// to the store. Its id is null and its timestamp is the current time.
func NewTransientMessage(roomID, sender, content string) *WireMessage {
	return &WireMessage{
		RoomID:    roomID,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}
