package engagement

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	rows := []Row{
		{SenderID: "v", DisplayName: "Vaughn", QuestionCount: 0, WordCount: 6, Readability: 90, ResponseTime: 1, WordsPerDay: 6},
		{SenderID: "d", DisplayName: "Dallas", QuestionCount: 1, WordCount: 4, Readability: 100, ResponseTime: 0.5, WordsPerDay: 8},
		{SenderID: "v", DisplayName: "Vaughn", QuestionCount: 2, WordCount: 10, Readability: 70, ResponseTime: 0, WordsPerDay: math.Inf(1)},
	}

	s := Summarize(rows)
	if s.Rows != 3 {
		t.Errorf("rows = %d, want 3", s.Rows)
	}
	if len(s.Senders) != 2 {
		t.Fatalf("expected 2 senders, got %d", len(s.Senders))
	}

	dallas, vaughn := s.Senders[0], s.Senders[1]
	if dallas.DisplayName != "Dallas" || vaughn.DisplayName != "Vaughn" {
		t.Fatalf("expected senders ordered by name, got %q, %q", dallas.DisplayName, vaughn.DisplayName)
	}

	if vaughn.Blocks != 2 || vaughn.Questions != 2 || vaughn.Words != 16 {
		t.Errorf("unexpected totals %+v", vaughn)
	}
	if vaughn.MeanResponseTime != 0.5 {
		t.Errorf("mean response time = %v, want 0.5", vaughn.MeanResponseTime)
	}
	if vaughn.MeanWordsPerDay != 6 {
		t.Errorf("mean words/day = %v, want 6 (infinite pace skipped)", vaughn.MeanWordsPerDay)
	}
	if vaughn.MeanReadability != 80 {
		t.Errorf("mean readability = %v, want 80", vaughn.MeanReadability)
	}
}

func TestSummarize_OnlyInfinitePace(t *testing.T) {
	s := Summarize([]Row{{SenderID: "v", ResponseTime: 0, WordsPerDay: math.Inf(1)}})
	if !math.IsNaN(s.Senders[0].MeanWordsPerDay) {
		t.Errorf("expected NaN mean, got %v", s.Senders[0].MeanWordsPerDay)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Rows != 0 || len(s.Senders) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}
