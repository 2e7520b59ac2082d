// Package source reads raw messages from the message store. Every backend
// yields documents with the same field names, which FromDocument turns into
// engagement.RawMessage values.
package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

// Document field names.
const (
	FieldID          = "_id"
	FieldSenderID    = "user_id"
	FieldDisplayName = "display_name"
	FieldCreatedAt   = "created_at"
	FieldMessageType = "message_type"
	FieldBody        = "message"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FromDocument converts one stored message document. Missing or mistyped
// required fields fail with engagement.ErrInvalidMessage.
func FromDocument(doc map[string]any) (engagement.RawMessage, error) {
	var m engagement.RawMessage
	var err error

	if m.ID, err = idString(doc, FieldID); err != nil {
		return m, err
	}
	if m.SenderID, err = idString(doc, FieldSenderID); err != nil {
		return m, invalid(m.ID, err)
	}
	if m.SenderDisplayName, err = reqString(doc, FieldDisplayName); err != nil {
		return m, invalid(m.ID, err)
	}
	if m.CreatedAt, err = timestamp(doc, FieldCreatedAt); err != nil {
		return m, invalid(m.ID, err)
	}
	if m.MessageType, err = integer(doc, FieldMessageType); err != nil {
		return m, invalid(m.ID, err)
	}
	if m.Body, err = reqString(doc, FieldBody); err != nil {
		return m, invalid(m.ID, err)
	}

	return m, m.Validate()
}

func invalid(id string, err error) error {
	return fmt.Errorf("message %s: %w", id, err)
}

func fieldError(field, problem string) error {
	return fmt.Errorf("%w: %s %s", engagement.ErrInvalidMessage, field, problem)
}

// idString accepts strings, whole numbers and anything with a Hex method
// (Mongo object ids).
func idString(doc map[string]any, field string) (string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return "", fieldError(field, "is missing")
	}
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", fieldError(field, "is empty")
		}
		return id, nil
	case interface{ Hex() string }:
		return id.Hex(), nil
	case json.Number:
		return id.String(), nil
	case int:
		return strconv.Itoa(id), nil
	case int32:
		return strconv.FormatInt(int64(id), 10), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return "", fieldError(field, "is not a whole number")
		}
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	}
	return "", fieldError(field, fmt.Sprintf("has unsupported type %T", v))
}

// reqString requires the field to be present and a string. An empty
// string is a valid value.
func reqString(doc map[string]any, field string) (string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return "", fieldError(field, "is missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(field, fmt.Sprintf("has unsupported type %T", v))
	}
	return s, nil
}

// timestamp accepts time values, anything with a Time method (Mongo dates)
// and ISO-8601 strings. Strings without a zone are UTC.
func timestamp(doc map[string]any, field string) (time.Time, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return time.Time{}, fieldError(field, "is missing")
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case interface{ Time() time.Time }:
		return t.Time().UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fieldError(field, fmt.Sprintf("%q is not a timestamp", t))
	}
	return time.Time{}, fieldError(field, fmt.Sprintf("has unsupported type %T", v))
}

func integer(doc map[string]any, field string) (int, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return 0, fieldError(field, "is missing")
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fieldError(field, "is not a whole number")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fieldError(field, "is not a whole number")
		}
		return int(i), nil
	}
	return 0, fieldError(field, fmt.Sprintf("has unsupported type %T", v))
}
