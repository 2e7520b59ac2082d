//go:build integration

package source

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIntegration_MongoFind(t *testing.T) {
	uri := os.Getenv("MONGO_CONNECTION_STRING")
	if uri == "" {
		t.Skip("MONGO_CONNECTION_STRING not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := "it_messages_" + uuid.New().String()[:8]
	m, err := NewMongo(ctx, uri, "talkspace_test", collection)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() {
		_ = m.collection.Drop(context.Background())
		_ = m.Close(context.Background())
	})

	at := time.Date(2020, 11, 2, 9, 0, 0, 0, time.UTC)
	_, err = m.collection.InsertMany(ctx, []any{
		bson.M{"user_id": "42", "display_name": "Dallas", "created_at": at, "message_type": 1, "message": "Hi?"},
		bson.M{"user_id": "42", "display_name": "Dallas", "created_at": at, "message_type": 4, "message": "auto"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	msgs, err := m.Find(ctx, []int{1})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].ID == "" || !msgs[0].CreatedAt.Equal(at) || msgs[0].Body != "Hi?" {
		t.Errorf("unexpected message %+v", msgs[0])
	}
}
