package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

// record is the JSON shape of a row. Timestamps are RFC 3339 (ISO-8601).
type record struct {
	Index         int       `json:"index"`
	SenderID      string    `json:"sender_id"`
	DisplayName   string    `json:"display_name"`
	CreatedAt     time.Time `json:"created_at"`
	MessageLength int       `json:"message_length"`
	QuestionCount int       `json:"question_count"`
	WordCount     int       `json:"word_count"`
	Readability   number    `json:"readability"`

	PrevSenderID      string    `json:"prev_sender_id"`
	PrevDisplayName   string    `json:"prev_display_name"`
	PrevCreatedAt     time.Time `json:"prev_created_at"`
	PrevMessageLength int       `json:"prev_message_length"`
	PrevQuestionCount int       `json:"prev_question_count"`
	PrevWordCount     int       `json:"prev_word_count"`
	PrevReadability   number    `json:"prev_readability"`

	ResponseTime number `json:"response_time"`
	WordsPerDay  number `json:"words_per_day"`
}

// number is a float64 that survives a JSON round trip when it is not finite.
// Infinities and NaN are written as the strings "Infinity", "-Infinity" and
// "NaN".
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*n = number(math.NaN())
		case "Infinity":
			*n = number(math.Inf(1))
		case "-Infinity":
			*n = number(math.Inf(-1))
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// EncodeJSON writes rows as a JSON array of objects. No rows encode as [].
func EncodeJSON(rows []engagement.Row) ([]byte, error) {
	recs := make([]record, len(rows))
	for i, r := range rows {
		recs[i] = toRecord(r)
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}
	return data, nil
}

// DecodeJSON parses the output of EncodeJSON.
func DecodeJSON(data []byte) ([]engagement.Row, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal rows: %w", err)
	}
	rows := make([]engagement.Row, len(recs))
	for i, rec := range recs {
		rows[i] = rec.row()
	}
	return rows, nil
}

func toRecord(r engagement.Row) record {
	return record{
		Index:             r.Index,
		SenderID:          r.SenderID,
		DisplayName:       r.DisplayName,
		CreatedAt:         r.CreatedAt,
		MessageLength:     r.MessageLength,
		QuestionCount:     r.QuestionCount,
		WordCount:         r.WordCount,
		Readability:       number(r.Readability),
		PrevSenderID:      r.PrevSenderID,
		PrevDisplayName:   r.PrevDisplayName,
		PrevCreatedAt:     r.PrevCreatedAt,
		PrevMessageLength: r.PrevMessageLength,
		PrevQuestionCount: r.PrevQuestionCount,
		PrevWordCount:     r.PrevWordCount,
		PrevReadability:   number(r.PrevReadability),
		ResponseTime:      number(r.ResponseTime),
		WordsPerDay:       number(r.WordsPerDay),
	}
}

func (rec record) row() engagement.Row {
	return engagement.Row{
		Index:             rec.Index,
		SenderID:          rec.SenderID,
		DisplayName:       rec.DisplayName,
		CreatedAt:         rec.CreatedAt,
		MessageLength:     rec.MessageLength,
		QuestionCount:     rec.QuestionCount,
		WordCount:         rec.WordCount,
		Readability:       float64(rec.Readability),
		PrevSenderID:      rec.PrevSenderID,
		PrevDisplayName:   rec.PrevDisplayName,
		PrevCreatedAt:     rec.PrevCreatedAt,
		PrevMessageLength: rec.PrevMessageLength,
		PrevQuestionCount: rec.PrevQuestionCount,
		PrevWordCount:     rec.PrevWordCount,
		PrevReadability:   float64(rec.PrevReadability),
		ResponseTime:      float64(rec.ResponseTime),
		WordsPerDay:       float64(rec.WordsPerDay),
	}
}
