package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// maxListedFailures caps the failures printed per supplier.
const maxListedFailures = 10

// Styles contains the lipgloss styles used for command output.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles. Without colour every style renders text as is.
func NewStyles(colour bool) *Styles {
	if !colour {
		plain := lipgloss.NewStyle()
		return &Styles{Title: plain, Muted: plain, Success: plain, Warning: plain, Error: plain}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	}
}

// Status returns the style for a run status.
func (s *Styles) Status(status domain.RunStatus) lipgloss.Style {
	switch status {
	case domain.StatusSuccess:
		return s.Success
	case domain.StatusPartial:
		return s.Warning
	default:
		return s.Error
	}
}

type renderer struct {
	w      io.Writer
	styles *Styles
}

// newRenderer colours output only when w is a terminal.
func newRenderer(w io.Writer) *renderer {
	colour := false
	if f, ok := w.(*os.File); ok {
		colour = term.IsTerminal(int(f.Fd()))
	}
	return &renderer{w: w, styles: NewStyles(colour)}
}

func (r *renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// pad left-aligns s in width columns before styling so alignment survives
// escape codes.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ==================== Run Reports ====================

func (r *renderer) report(report *domain.RunReport) {
	st := r.styles
	r.printf("%s %s\n",
		st.Title.Render(fmt.Sprintf("Run %s (%s)", report.ID, report.Action)),
		st.Status(report.Status).Render(string(report.Status)))
	r.printf("%s\n", st.Muted.Render(fmt.Sprintf("Started %s, took %s",
		report.StartedAt.Local().Format(time.DateTime), report.Duration().Round(time.Millisecond))))
	if report.Since != nil {
		r.printf("%s\n", st.Muted.Render("Changes since "+report.Since.Format(time.RFC3339)))
	}
	if report.Error != "" {
		r.printf("%s\n", st.Error.Render("Error: "+report.Error))
	}
	if len(report.Outcomes) == 0 {
		r.printf("\n")
		return
	}

	r.printf("\n  %s%s\n", pad("SUPPLIER", 16), pad("STATUS", 10)+
		"EXTRACTED  CORRELATED  TRANSFORMED  LOADED  SKIPPED  FAILED")
	for _, o := range report.Outcomes {
		r.printf("  %s%s%s\n", pad(o.SupplierID, 16),
			st.Status(o.Status).Render(pad(string(o.Status), 10)), countsRow(o.Counts))
	}
	r.printf("  %s%s%s\n", pad("total", 16), pad("", 10), countsRow(report.Totals()))

	for _, o := range report.Outcomes {
		r.outcomeDetail(o)
	}
	r.printf("\n")
}

func countsRow(c domain.Counts) string {
	return fmt.Sprintf("%9d  %10d  %11d  %6d  %7d  %6d",
		c.Extracted, c.Correlated, c.Transformed, c.Loaded, c.Skipped, c.Failed)
}

func (r *renderer) outcomeDetail(o domain.RunOutcome) {
	st := r.styles
	if o.Error == "" && len(o.Failures) == 0 && len(o.Skips) == 0 {
		return
	}

	r.printf("\n%s\n", st.Title.Render(o.SupplierID))
	if o.Error != "" {
		r.printf("  %s\n", st.Error.Render(o.Error))
	}
	r.records("failed", o.Failures, st.Error)
	r.records("skipped", o.Skips, st.Warning)
}

func (r *renderer) records(label string, list []domain.RecordFailure, style lipgloss.Style) {
	for i, f := range list {
		if i == maxListedFailures {
			r.printf("  %s\n", r.styles.Muted.Render(fmt.Sprintf("... %d more %s", len(list)-i, label)))
			return
		}
		key := f.CorrelationKey
		if key == "" {
			key = "-"
		}
		r.printf("  %s %s %s: %s\n", style.Render(label), key, f.Stage, f.Reason)
	}
}

// ==================== Validation ====================

func (r *renderer) validation(report *domain.ValidationReport) {
	st := r.styles
	r.printf("%s\n\n", st.Title.Render("Validation"))
	if len(report.Checks) == 0 {
		r.printf("  %s\n", st.Muted.Render("no suppliers configured"))
		return
	}

	for _, c := range report.Checks {
		if c.OK() {
			r.printf("  %s%s\n", pad(c.SupplierID, 16), st.Success.Render("ok"))
			continue
		}
		r.printf("  %s%s\n", pad(c.SupplierID, 16), st.Error.Render("failed"))
		for _, line := range []struct{ label, msg string }{
			{"config", c.ConfigErr},
			{"extractor", c.ExtractorErr},
			{"loader", c.LoaderErr},
		} {
			if line.msg != "" {
				r.printf("    %s %s\n", st.Muted.Render(line.label+":"), line.msg)
			}
		}
	}
	r.printf("\n")
}

// ==================== History and Sink ====================

func (r *renderer) history(reports []domain.RunReport) {
	st := r.styles
	r.printf("%s\n\n", st.Title.Render("History"))
	if len(reports) == 0 {
		r.printf("  %s\n\n", st.Muted.Render("no runs recorded"))
		return
	}

	for _, rep := range reports {
		totals := rep.Totals()
		r.printf("  %s  %s%s%s loaded %d, failed %d\n",
			rep.StartedAt.Local().Format(time.DateTime),
			pad(string(rep.Action), 13),
			st.Status(rep.Status).Render(pad(string(rep.Status), 9)),
			st.Muted.Render(rep.ID),
			totals.Loaded, totals.Failed)
	}
	r.printf("\n")
}

func (r *renderer) stats(stats domain.SinkStats) {
	st := r.styles
	r.printf("%s\n\n", st.Title.Render("Products"))
	r.printf("  %s%d\n", pad("total", 16), stats.Total)
	for _, k := range sortedKeys(stats.BySupplier) {
		r.printf("  %s%d\n", pad(k, 16), stats.BySupplier[k])
	}
	if len(stats.ByStatus) > 0 {
		r.printf("\n")
		for _, k := range sortedKeys(stats.ByStatus) {
			r.printf("  %s%d\n", pad(k, 16), stats.ByStatus[k])
		}
	}
	r.printf("\n")
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
