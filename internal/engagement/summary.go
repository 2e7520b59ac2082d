package engagement

import (
	"math"
	"slices"
	"strings"
)

// SenderSummary aggregates the rows attributed to one sender. Means skip
// non-finite values, so a zero-duration reply does not swamp the average.
type SenderSummary struct {
	SenderID         string
	DisplayName      string
	Blocks           int
	Questions        int
	Words            int
	MeanResponseTime float64 // days, NaN if no finite value
	MeanWordsPerDay  float64 // NaN if no finite value
	MeanReadability  float64
}

// Summary is a per-sender digest of one result table.
type Summary struct {
	Rows    int
	Senders []SenderSummary // ordered by display name, then sender id
}

// Summarize aggregates rows by sender.
func Summarize(rows []Row) Summary {
	type acc struct {
		s                    SenderSummary
		rt, wpd, read        float64
		nRT, nWPD, nReadable int
	}
	bySender := make(map[string]*acc)

	for _, r := range rows {
		a, ok := bySender[r.SenderID]
		if !ok {
			a = &acc{s: SenderSummary{SenderID: r.SenderID, DisplayName: r.DisplayName}}
			bySender[r.SenderID] = a
		}
		a.s.Blocks++
		a.s.Questions += r.QuestionCount
		a.s.Words += r.WordCount
		if finite(r.ResponseTime) {
			a.rt += r.ResponseTime
			a.nRT++
		}
		if finite(r.WordsPerDay) {
			a.wpd += r.WordsPerDay
			a.nWPD++
		}
		if finite(r.Readability) {
			a.read += r.Readability
			a.nReadable++
		}
	}

	out := Summary{Rows: len(rows), Senders: make([]SenderSummary, 0, len(bySender))}
	for _, a := range bySender {
		a.s.MeanResponseTime = mean(a.rt, a.nRT)
		a.s.MeanWordsPerDay = mean(a.wpd, a.nWPD)
		a.s.MeanReadability = mean(a.read, a.nReadable)
		out.Senders = append(out.Senders, a.s)
	}
	slices.SortFunc(out.Senders, func(a, b SenderSummary) int {
		if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return strings.Compare(a.SenderID, b.SenderID)
	})
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
