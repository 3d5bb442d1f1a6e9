// Package cli renders command results for the Quotable command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const separator = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteScoredQuotes writes ranked search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteScoredQuotes(w io.Writer, topic string, results []*models.ScoredQuote, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, results)
	}
	fmt.Fprintf(w, "\nFound %d quotes for %q\n\n", len(results), topic)
	for i, r := range results {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Rank: %d | Similarity: %.4f | Category: %s\n", i+1, r.Similarity, r.Category)
		fmt.Fprintf(w, "\n%s\n\n", r.Text)
	}
	return nil
}

// WriteQuoteList writes stored quotes to w in the given format.
func WriteQuoteList(w io.Writer, quotes []*models.QuoteSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, quotes)
	}
	fmt.Fprintf(w, "\n%d quotes stored\n\n", len(quotes))
	for _, q := range quotes {
		fmt.Fprintf(w, "[%s] %s\n", q.Category, q.Text)
	}
	return nil
}

// WriteQuote writes a single quote to w in the given format.
func WriteQuote(w io.Writer, quote *models.QuoteSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, quote)
	}
	fmt.Fprintf(w, "\n%s\n  [%s]\n", quote.Text, quote.Category)
	return nil
}

// WriteWordSimilarities writes word pair comparisons to w in the given format.
func WriteWordSimilarities(w io.Writer, results []models.WordSimilarity, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, results)
	}
	fmt.Fprintf(w, "\nWord similarity (most to least similar)\n\n")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%-10s %-10s failed: %s\n", r.Word1, r.Word2, r.Error)
			continue
		}
		fmt.Fprintf(w, "%-10s %-10s %.4f\n", r.Word1, r.Word2, r.Similarity)
	}
	return nil
}

// WriteInitResult writes the outcome of a corpus load to w in the given format.
func WriteInitResult(w io.Writer, result *models.InitResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "%s: %s\n", result.Status, result.Message)
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  quote %d (%s): %s\n", f.Index, utils.Truncate(f.Text, 40), f.Reason)
	}
	return nil
}

// WriteCleanResult writes the outcome of a store clean to w in the given format.
func WriteCleanResult(w io.Writer, result *models.CleanResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "%s: %s (%d removed)\n", result.Status, result.Message, result.Removed)
	return nil
}

// WriteHealthReport writes a health report to w in the given format.
func WriteHealthReport(w io.Writer, report *models.HealthReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "Status: %s\n", report.Status)
	for _, name := range []string{"embedding", "store"} {
		if state, ok := report.Services[name]; ok {
			fmt.Fprintf(w, "  %s: %s\n", name, state)
		}
	}
	return nil
}
