package engagement

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const day = 24 * time.Hour

// Measure computes the scalar metrics of a block's text.
func Measure(text string) BlockStats {
	return BlockStats{
		Length:        utf8.RuneCountInString(text),
		QuestionCount: strings.Count(text, "?"),
		WordCount:     whitespaceRuns(text) + 1,
		Readability:   FleschReadingEase(text),
	}
}

// ComputeMetrics pairs every block with the block before it. The first block
// has no predecessor and is left out, so the result has len(blocks)-1
// entries in the same order.
func ComputeMetrics(blocks []Block) []BlockPair {
	if len(blocks) < 2 {
		return nil
	}

	stats := make([]BlockStats, len(blocks))
	for i, b := range blocks {
		stats[i] = Measure(b.Text)
	}

	pairs := make([]BlockPair, 0, len(blocks)-1)
	for i := 1; i < len(blocks); i++ {
		cur, prev := blocks[i], blocks[i-1]
		rt := float64(cur.StartedAt.Sub(prev.StartedAt)) / float64(day)
		pairs = append(pairs, BlockPair{
			Block:         cur,
			Stats:         stats[i],
			Previous:      prev,
			PreviousStats: stats[i-1],
			ResponseTime:  rt,
			// Zero response time gives +Inf; the record is kept.
			Pace: float64(stats[i].WordCount) / rt,
		})
	}
	return pairs
}

func whitespaceRuns(s string) int {
	n := 0
	inSpace := false
	for _, r := range s {
		sp := unicode.IsSpace(r)
		if sp && !inSpace {
			n++
		}
		inSpace = sp
	}
	return n
}
