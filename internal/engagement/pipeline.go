package engagement

import (
	"fmt"
	"slices"
)

// Transform runs the whole pipeline over an unordered collection of raw
// messages: filter by type, normalize, sort by time, build blocks, compute
// metrics and flatten to rows. A single invalid message fails the whole
// transform.
func Transform(raw []RawMessage, relevantTypes []int) ([]Row, error) {
	relevant := make(map[int]bool, len(relevantTypes))
	for _, t := range relevantTypes {
		relevant[t] = true
	}

	cleaned := make([]CleanedMessage, 0, len(raw))
	for i, m := range raw {
		if !relevant[m.MessageType] {
			continue
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		cleaned = append(cleaned, Clean(m))
	}

	// Everything downstream depends on time order. Ties keep input order.
	slices.SortStableFunc(cleaned, func(a, b CleanedMessage) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	pairs := ComputeMetrics(BuildBlocks(cleaned))

	rows := make([]Row, 0, len(pairs))
	for _, p := range pairs {
		r := p.Row()
		if !r.Resolved() {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Row flattens the pair, dropping the block texts.
func (p BlockPair) Row() Row {
	return Row{
		Index:             p.Block.Index,
		SenderID:          p.Block.SenderID,
		DisplayName:       p.Block.SenderDisplayName,
		CreatedAt:         p.Block.StartedAt,
		MessageLength:     p.Stats.Length,
		QuestionCount:     p.Stats.QuestionCount,
		WordCount:         p.Stats.WordCount,
		Readability:       p.Stats.Readability,
		PrevSenderID:      p.Previous.SenderID,
		PrevDisplayName:   p.Previous.SenderDisplayName,
		PrevCreatedAt:     p.Previous.StartedAt,
		PrevMessageLength: p.PreviousStats.Length,
		PrevQuestionCount: p.PreviousStats.QuestionCount,
		PrevWordCount:     p.PreviousStats.WordCount,
		PrevReadability:   p.PreviousStats.Readability,
		ResponseTime:      p.ResponseTime,
		WordsPerDay:       p.Pace,
	}
}
