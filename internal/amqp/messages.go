package amqp

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"ricavi/internal/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MonthUpdatedMessage announces that the raw cells of a month changed.
// It carries only the period; consumers reload the month from storage.
type MonthUpdatedMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMonthUpdatedMessage(p core.Period) *MonthUpdatedMessage {
	return &MonthUpdatedMessage{
		Year:      p.Year,
		Month:     int(p.Month),
		Timestamp: time.Now(),
	}
}

// Period returns the month the message refers to.
func (m *MonthUpdatedMessage) Period() core.Period {
	return core.NewPeriod(m.Year, m.Month)
}

// ToJSON converts the message to JSON bytes
func (m *MonthUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthUpdatedMessageFromJSON decodes and validates a message.
func MonthUpdatedMessageFromJSON(data []byte) (*MonthUpdatedMessage, error) {
	var msg MonthUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Period().Validate(); err != nil {
		return nil, fmt.Errorf("invalid period %d-%d: %w", msg.Year, msg.Month, err)
	}
	return &msg, nil
}
