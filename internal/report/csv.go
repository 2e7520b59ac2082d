package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

// Columns is the CSV header. The first column is the row index.
var Columns = []string{
	"index",
	"sender_id", "display_name", "created_at",
	"message_length", "question_count", "word_count", "readability",
	"prev_sender_id", "prev_display_name", "prev_created_at",
	"prev_message_length", "prev_question_count", "prev_word_count", "prev_readability",
	"response_time", "words_per_day",
}

// EncodeCSV writes rows as CSV with a header line. Floats use the shortest
// exact representation; infinities are written as +Inf and -Inf.
func EncodeCSV(rows []engagement.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(csvRecord(r)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r.Index, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRecord(r engagement.Row) []string {
	return []string{
		strconv.Itoa(r.Index),
		r.SenderID,
		r.DisplayName,
		r.CreatedAt.Format(time.RFC3339Nano),
		strconv.Itoa(r.MessageLength),
		strconv.Itoa(r.QuestionCount),
		strconv.Itoa(r.WordCount),
		formatFloat(r.Readability),
		r.PrevSenderID,
		r.PrevDisplayName,
		r.PrevCreatedAt.Format(time.RFC3339Nano),
		strconv.Itoa(r.PrevMessageLength),
		strconv.Itoa(r.PrevQuestionCount),
		strconv.Itoa(r.PrevWordCount),
		formatFloat(r.PrevReadability),
		formatFloat(r.ResponseTime),
		formatFloat(r.WordsPerDay),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
