package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/kwvolume/internal/engine/batch"
	"github.com/rshade/kwvolume/internal/enrich"
	"github.com/rshade/kwvolume/internal/kwapi"
	"github.com/rshade/kwvolume/internal/table"
)

// Summary rendering constants.
const (
	keywordColumnWidth = 40
	summaryRuleWidth   = 80
	progressBarWidth   = 40
	missingVolume      = "N/A"
)

// isWriterTerminal reports whether the provided io.Writer refers to a terminal.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// consoleReporter prints batch progress, and in verbose mode every keyword's
// volume and the raw API response.
type consoleReporter struct {
	w       io.Writer
	verbose bool
	tty     bool
	bar     progress.Model
}

var _ enrich.Observer = (*consoleReporter)(nil)

func newConsoleReporter(w io.Writer, verbose bool) *consoleReporter {
	return &consoleReporter{
		w:       w,
		verbose: verbose,
		tty:     isWriterTerminal(w),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth)),
	}
}

// BatchStarted implements enrich.Observer.
func (r *consoleReporter) BatchStarted(num, total int) {
	_, _ = fmt.Fprintf(r.w, "Processing batch %d/%d\n", num, total)
}

// BatchFetched implements enrich.Observer.
func (r *consoleReporter) BatchFetched(snap batch.ProgressSnapshot, _ []string, result *kwapi.BatchResult) {
	if r.verbose {
		_, _ = fmt.Fprintf(r.w, "\nRaw API Response:\n%s\n", result.Raw)
		for _, kw := range result.Keywords {
			_, _ = fmt.Fprintf(r.w, "Keyword: %-*s | Search Volume: %s\n",
				keywordColumnWidth, kw.Keyword, formatVolume(kw.Vol))
		}
	}
	if r.tty {
		_, _ = fmt.Fprintln(r.w, r.bar.ViewAs(snap.PercentComplete/100))
	}
}

func formatVolume(v *int64) string {
	if v == nil {
		return missingVolume
	}
	return fmt.Sprintf("%d", *v)
}

// renderSummary writes every row's keyword and volume, styled on a terminal
// and as plain text otherwise.
func renderSummary(w io.Writer, t *table.Table, stats enrich.MergeStats) error {
	if isWriterTerminal(w) {
		return renderStyledSummary(w, t, stats)
	}
	return renderPlainSummary(w, t, stats)
}

// summaryVolume returns the row's volume cell, or N/A when empty.
func summaryVolume(t *table.Table, row []string) string {
	if !t.HasVolumeColumn() || row[t.VolumeIndex] == "" {
		return missingVolume
	}
	return row[t.VolumeIndex]
}

func statsLine(stats enrich.MergeStats) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("Updated %d of %d rows (%d without volume, %d not returned)",
		stats.RowsUpdated, stats.RowsTotal, stats.NullVolumes, stats.RowsUnmatched)
}

func renderPlainSummary(w io.Writer, t *table.Table, stats enrich.MergeStats) error {
	rule := strings.Repeat("-", summaryRuleWidth)

	var b strings.Builder
	b.WriteString("\nSummary of Search Volumes:\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-*s | %s\n", keywordColumnWidth, "Keyword", "Search Volume")
	b.WriteString(rule + "\n")
	for _, row := range t.Rows {
		fmt.Fprintf(&b, "%-*s | %s\n", keywordColumnWidth, row[t.KeywordIndex], summaryVolume(t, row))
	}
	b.WriteString(rule + "\n")
	b.WriteString(statsLine(stats) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderStyledSummary(w io.Writer, t *table.Table, stats enrich.MergeStats) error {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle := lipgloss.NewStyle().Bold(true)
	missingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	keywordStyle := lipgloss.NewStyle().Width(keywordColumnWidth)
	borderStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1)

	var content strings.Builder
	content.WriteString(titleStyle.Render("SEARCH VOLUMES"))
	content.WriteString("\n\n")
	content.WriteString(headerStyle.Render(keywordStyle.Render("Keyword") + " | Search Volume"))
	content.WriteString("\n")
	content.WriteString(strings.Repeat("─", keywordColumnWidth+len(" | Search Volume")))
	content.WriteString("\n")
	for _, row := range t.Rows {
		volume := summaryVolume(t, row)
		if volume == missingVolume {
			volume = missingStyle.Render(volume)
		}
		content.WriteString(keywordStyle.Render(row[t.KeywordIndex]) + " | " + volume)
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(statsLine(stats))

	_, err := fmt.Fprintln(w, borderStyle.Render(content.String()))
	return err
}
