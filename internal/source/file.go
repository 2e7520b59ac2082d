package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

// File reads a JSON array of message documents, as produced by a
// mongoexport --jsonArray dump.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Find(ctx context.Context, messageTypes []int) ([]engagement.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return decodeDocuments(data, messageTypes)
}

func decodeDocuments(data []byte, messageTypes []int) ([]engagement.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	var msgs []engagement.RawMessage
	for _, doc := range docs {
		flattenExtended(doc)

		// Filter before full validation so unrelated automated messages
		// with odd shapes do not fail the read.
		t, err := integer(doc, FieldMessageType)
		if err == nil && !slices.Contains(messageTypes, t) {
			continue
		}

		m, err := FromDocument(doc)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// flattenExtended unwraps the extended-JSON wrappers mongoexport writes
// for object ids, dates and 64-bit ints.
func flattenExtended(doc map[string]any) {
	for k, v := range doc {
		wrapper, ok := v.(map[string]any)
		if !ok || len(wrapper) != 1 {
			continue
		}
		for _, key := range []string{"$oid", "$date", "$numberLong", "$numberInt"} {
			inner, ok := wrapper[key]
			if !ok {
				continue
			}
			if nested, ok := inner.(map[string]any); ok {
				// {"$date": {"$numberLong": "1604307600000"}}
				if ms, ok := nested["$numberLong"].(string); ok {
					if n, err := strconv.ParseInt(ms, 10, 64); err == nil {
						inner = time.UnixMilli(n).UTC()
					}
				}
			}
			if key == "$numberLong" || key == "$numberInt" {
				if s, ok := inner.(string); ok {
					inner = json.Number(s)
				}
			}
			doc[k] = inner
		}
	}
}
