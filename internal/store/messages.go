package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

// Find returns every message whose type is in messageTypes, in no
// particular order. A row with a NULL required column fails the whole read.
func (s *Store) Find(ctx context.Context, messageTypes []int) ([]engagement.RawMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, user_id::text, display_name, created_at, message_type, message
		FROM messages
		WHERE message_type = ANY($1)`,
		messageTypes,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []engagement.RawMessage
	for rows.Next() {
		var (
			id, userID, displayName, body *string
			createdAt                     *time.Time
			messageType                   *int
		)
		if err := rows.Scan(&id, &userID, &displayName, &createdAt, &messageType, &body); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		m, err := rawMessage(id, userID, displayName, createdAt, messageType, body)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

func rawMessage(id, userID, displayName *string, createdAt *time.Time, messageType *int, body *string) (engagement.RawMessage, error) {
	if id == nil {
		return engagement.RawMessage{}, fmt.Errorf("%w: NULL id", engagement.ErrInvalidMessage)
	}
	missing := ""
	switch {
	case userID == nil:
		missing = "user_id"
	case displayName == nil:
		missing = "display_name"
	case createdAt == nil:
		missing = "created_at"
	case messageType == nil:
		missing = "message_type"
	case body == nil:
		missing = "message"
	}
	if missing != "" {
		return engagement.RawMessage{}, fmt.Errorf("%w: message %s: NULL %s", engagement.ErrInvalidMessage, *id, missing)
	}

	m := engagement.RawMessage{
		ID:                *id,
		SenderID:          *userID,
		SenderDisplayName: *displayName,
		CreatedAt:         createdAt.UTC(),
		MessageType:       *messageType,
		Body:              *body,
	}
	return m, m.Validate()
}
