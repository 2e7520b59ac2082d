package engagement

import "strings"

// BuildBlocks groups messages into blocks, starting a new block every time
// the sender changes. msgs must already be sorted by CreatedAt; the order is
// kept as is.
func BuildBlocks(msgs []CleanedMessage) []Block {
	if len(msgs) == 0 {
		return nil
	}

	var blocks []Block
	var current []CleanedMessage

	for _, msg := range msgs {
		if len(current) > 0 && msg.SenderID != current[0].SenderID {
			blocks = append(blocks, buildBlock(current, len(blocks)+1))
			current = nil
		}
		current = append(current, msg)
	}
	blocks = append(blocks, buildBlock(current, len(blocks)+1))

	return blocks
}

func buildBlock(msgs []CleanedMessage, idx int) Block {
	b := Block{
		Index:             idx,
		SenderID:          msgs[0].SenderID,
		SenderDisplayName: msgs[0].SenderDisplayName,
		StartedAt:         msgs[0].CreatedAt,
		Messages:          make([]CleanedMessage, len(msgs)),
	}
	copy(b.Messages, msgs)

	bodies := make([]string, len(msgs))
	for i, m := range msgs {
		bodies[i] = m.Body
		if m.CreatedAt.Before(b.StartedAt) {
			b.StartedAt = m.CreatedAt
		}
	}
	b.Text = strings.Join(bodies, "\n")

	return b
}
