// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"encoding/json"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
)

// Message is the published form of a recorded stats event.
type Message struct {
	ID        string              `json:"id"`
	Sequencer string              `json:"sequencer"`
	SoundID   string              `json:"soundId"`
	Category  string              `json:"category"`
	Event     stats.EventType     `json:"event"`
	Weight    int64               `json:"weight"`
	Stats     stats.SoundCounters `json:"stats"`
	Time      time.Time           `json:"time"`
}

// NewMessage builds the message for rec. ID and Sequencer are left to the
// emitter.
func NewMessage(rec stats.Recorded) Message {
	return Message{
		SoundID:  rec.SoundID,
		Category: stats.Category(rec.SoundID),
		Event:    rec.Event,
		Weight:   rec.Weight,
		Stats:    rec.Stats,
		Time:     rec.At,
	}
}

// Encode returns the JSON wire form.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a published message.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
