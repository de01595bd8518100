// Package motionlink consumes a motion stream over a websocket. A relay
// (another capture machine or a cloud session) pushes JSON frames of solved
// bone rotations, blend values and the root position; the client feeds them
// into the pipeline as the external source.
package motionlink

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of a motion-link message.
type MessageType string

const (
	// Relay → client messages
	TypeBoneFrame  MessageType = "bones"  // Bone rotation frame
	TypeBlendFrame MessageType = "blends" // Expression value frame
	TypeRootFrame  MessageType = "root"   // Root position frame

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all motion-link messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal message data: %w", err)
		}
	}
	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	}, nil
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

// ParseData unmarshals the message payload into v.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Rotation is a quaternion in [x, y, z, w] component order.
type Rotation [4]float64

// BoneFrameData carries bone rotations keyed by VRM bone name.
type BoneFrameData struct {
	Bones map[string]Rotation `json:"bones"`
}

// BlendFrameData carries expression weights keyed by expression name.
type BlendFrameData struct {
	Values map[string]float64 `json:"values"`
}

// RootFrameData carries the root position in meters.
type RootFrameData struct {
	Position [3]float64 `json:"position"`
}

// GetBoneFrame extracts a bone frame payload.
func (m *Message) GetBoneFrame() (*BoneFrameData, error) {
	var data BoneFrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetBlendFrame extracts a blend frame payload.
func (m *Message) GetBlendFrame() (*BlendFrameData, error) {
	var data BlendFrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetRootFrame extracts a root frame payload.
func (m *Message) GetRootFrame() (*RootFrameData, error) {
	var data RootFrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
