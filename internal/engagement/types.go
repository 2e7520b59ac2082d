package engagement

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidMessage marks a raw message that is missing a required field.
var ErrInvalidMessage = errors.New("invalid message")

// RawMessage is a single message as read from the message source.
type RawMessage struct {
	ID                string
	SenderID          string
	SenderDisplayName string
	CreatedAt         time.Time
	MessageType       int
	Body              string
}

// Validate reports the first missing required field.
func (m RawMessage) Validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	case m.SenderID == "":
		return fmt.Errorf("%w: message %s: missing sender id", ErrInvalidMessage, m.ID)
	case m.CreatedAt.IsZero():
		return fmt.Errorf("%w: message %s: missing created_at", ErrInvalidMessage, m.ID)
	}
	return nil
}

// CleanedMessage is a RawMessage whose body has been through Normalize.
type CleanedMessage RawMessage

// Clean returns m with its body normalized.
func Clean(m RawMessage) CleanedMessage {
	c := CleanedMessage(m)
	c.Body = Normalize(m.Body)
	return c
}

// Block is a maximal run of consecutive messages from one sender.
type Block struct {
	Index             int // 1-based position in the block sequence
	SenderID          string
	SenderDisplayName string
	StartedAt         time.Time
	Text              string
	Messages          []CleanedMessage
}

// BlockStats are the scalar metrics of a single block.
type BlockStats struct {
	Length        int
	QuestionCount int
	WordCount     int
	Readability   float64
}

// BlockPair is a block measured against the block right before it.
type BlockPair struct {
	Block         Block
	Stats         BlockStats
	Previous      Block
	PreviousStats BlockStats

	// ResponseTime is in days. Pace is words per day and is +Inf when
	// both blocks started at the same instant.
	ResponseTime float64
	Pace         float64
}

// Row is one flat output record: a BlockPair without the free text.
type Row struct {
	Index int

	SenderID      string
	DisplayName   string
	CreatedAt     time.Time
	MessageLength int
	QuestionCount int
	WordCount     int
	Readability   float64

	PrevSenderID      string
	PrevDisplayName   string
	PrevCreatedAt     time.Time
	PrevMessageLength int
	PrevQuestionCount int
	PrevWordCount     int
	PrevReadability   float64

	ResponseTime float64
	WordsPerDay  float64
}

// Resolved reports whether every metric of the row has a value. Infinite
// values count as resolved, NaN does not.
func (r Row) Resolved() bool {
	for _, v := range []float64{r.Readability, r.PrevReadability, r.ResponseTime, r.WordsPerDay} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
