package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/quotable-io/quotable/internal/models"
)

func TestWriteScoredQuotes_Text(t *testing.T) {
	results := []*models.ScoredQuote{
		{Text: "Fortune favors the bold", Category: "courage", Similarity: 0.91},
		{Text: "A stitch in time saves nine", Category: "proverbs", Similarity: 0.42},
	}
	var buf bytes.Buffer
	if err := WriteScoredQuotes(&buf, "bravery", results, OutputText); err != nil {
		t.Fatalf("WriteScoredQuotes(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 2 quotes", "bravery", "Rank: 1", "0.9100", "courage", "Fortune favors the bold", "Rank: 2"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteScoredQuotes_JSON(t *testing.T) {
	results := []*models.ScoredQuote{
		{Text: "Fortune favors the bold", Category: "courage", Similarity: 0.91},
	}
	var buf bytes.Buffer
	if err := WriteScoredQuotes(&buf, "bravery", results, OutputJSON); err != nil {
		t.Fatalf("WriteScoredQuotes(json): %v", err)
	}
	var decoded []models.ScoredQuote
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Text != "Fortune favors the bold" {
		t.Errorf("decoded: got %+v", decoded)
	}
}

func TestWriteScoredQuotes_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScoredQuotes(&buf, "nothing", nil, OutputText); err != nil {
		t.Fatalf("WriteScoredQuotes(empty): %v", err)
	}
	if !strings.Contains(buf.String(), "Found 0 quotes") {
		t.Errorf("expected zero count, got %q", buf.String())
	}
}

func TestWriteQuoteList(t *testing.T) {
	quotes := []*models.QuoteSummary{
		{Text: "The early bird catches the worm", Category: "proverbs"},
		{Text: "Fortune favors the bold", Category: "courage"},
	}
	var buf bytes.Buffer
	if err := WriteQuoteList(&buf, quotes, OutputText); err != nil {
		t.Fatalf("WriteQuoteList(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"2 quotes stored", "[proverbs]", "[courage]", "Fortune favors the bold"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteQuoteList(&buf, quotes, OutputJSON); err != nil {
		t.Fatalf("WriteQuoteList(json): %v", err)
	}
	var decoded []models.QuoteSummary
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded: got %d quotes", len(decoded))
	}
}

func TestWriteQuote(t *testing.T) {
	quote := &models.QuoteSummary{Text: "Fortune favors the bold", Category: "courage"}
	var buf bytes.Buffer
	if err := WriteQuote(&buf, quote, OutputText); err != nil {
		t.Fatalf("WriteQuote(text): %v", err)
	}
	if !strings.Contains(buf.String(), "Fortune favors the bold") || !strings.Contains(buf.String(), "[courage]") {
		t.Errorf("text output: got %q", buf.String())
	}
}

func TestWriteWordSimilarities(t *testing.T) {
	results := []models.WordSimilarity{
		{Word1: "man", Word2: "man", Similarity: 1.0},
		{Word1: "happy", Word2: "sad", Similarity: 0.31},
		{Word1: "banana", Word2: "car", Similarity: 0.0, Error: "provider down"},
	}
	var buf bytes.Buffer
	if err := WriteWordSimilarities(&buf, results, OutputText); err != nil {
		t.Fatalf("WriteWordSimilarities(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"1.0000", "0.3100", "failed: provider down"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteInitResult(t *testing.T) {
	result := &models.InitResult{
		Status:  "partial",
		Message: "23 quotes loaded, 1 failed",
		Count:   23,
		Failures: []models.ItemFailure{
			{Index: 4, Text: "Some quote text", Reason: "embed: provider down"},
		},
	}
	var buf bytes.Buffer
	if err := WriteInitResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteInitResult(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"partial: 23 quotes loaded, 1 failed", "quote 4", "provider down"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteCleanResult(t *testing.T) {
	result := &models.CleanResult{Status: "success", Message: "Database cleaned", Removed: 24}
	var buf bytes.Buffer
	if err := WriteCleanResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteCleanResult(text): %v", err)
	}
	if !strings.Contains(buf.String(), "success: Database cleaned (24 removed)") {
		t.Errorf("text output: got %q", buf.String())
	}
}

func TestWriteHealthReport(t *testing.T) {
	report := &models.HealthReport{
		Status: "unhealthy",
		Services: map[string]string{
			"embedding": "error: connection refused",
			"store":     "ok",
		},
	}
	var buf bytes.Buffer
	if err := WriteHealthReport(&buf, report, OutputText); err != nil {
		t.Fatalf("WriteHealthReport(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Status: unhealthy", "embedding: error: connection refused", "store: ok"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteHealthReport(&buf, report, OutputJSON); err != nil {
		t.Fatalf("WriteHealthReport(json): %v", err)
	}
	var decoded models.HealthReport
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Status != "unhealthy" {
		t.Errorf("decoded status: got %q", decoded.Status)
	}
}

func TestUnknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuoteList(&buf, nil, OutputFormat("unknown")); err != nil {
		t.Fatalf("WriteQuoteList(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "0 quotes stored") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}
