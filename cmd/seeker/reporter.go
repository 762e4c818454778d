package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/seekerlab/seeker/internal/memory"
	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/store"
)

// statsPrinter groups large numbers for readability (1,234,567).
var statsPrinter = message.NewPrinter(language.English)

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncate shortens a string to maxLen runes, ending in "…" if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

func printSolution(w io.Writer, rec models.SolutionRecord) {
	marker := "≈"
	if rec.AccuracyPct >= 100 {
		marker = "="
	}
	fmt.Fprintf(w, "%s %s %s\n", rec.EquationText, marker, formatValue(rec.ResultValue)) //nolint:errcheck
	fmt.Fprintf(w, "Accuracy: %.2f%%  Discovery: %.2fms  Used: %d times\n",              //nolint:errcheck
		rec.AccuracyPct, rec.DiscoveryTimeMs, rec.TimesUsed)
}

func printPattern(w io.Writer, rec models.PatternRecord, cacheHit bool) {
	source := "learned"
	if cacheHit {
		source = "cached"
	}
	fmt.Fprintf(w, "Pattern [%s]: %s (%s)  success %.1f%%  avg iterations %.0f  %.2fms\n", //nolint:errcheck
		source, rec.Structure, rec.PatternType, rec.SuccessRate, rec.AvgIterations, rec.ExecutionTimeMs)
}

func printSolutionTable(w io.Writer, records []models.SolutionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No cached solutions.") //nolint:errcheck
		return
	}

	const (
		colKey      = 32
		colEquation = 24
		colAccuracy = 9
		colUsed     = 6
	)
	fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
		padRight("KEY", colKey), padRight("EQUATION", colEquation),
		padRight("ACCURACY", colAccuracy), "USED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s  %d\n", //nolint:errcheck
			padRight(truncate(rec.Key.String(), colKey), colKey),
			padRight(truncate(rec.EquationText, colEquation), colEquation),
			padRight(fmt.Sprintf("%.2f%%", rec.AccuracyPct), colAccuracy),
			rec.TimesUsed)
	}
	fmt.Fprintln(w) //nolint:errcheck
}

func printPatternTable(w io.Writer, records []models.PatternRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No learned patterns.") //nolint:errcheck
		return
	}

	const (
		colSig       = 26
		colStructure = 24
		colSuccess   = 8
	)
	fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
		padRight("PROFILE", colSig), padRight("STRATEGY", colStructure),
		padRight("SUCCESS", colSuccess), "USED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s  %d\n", //nolint:errcheck
			padRight(truncate(rec.ProblemSignature, colSig), colSig),
			padRight(truncate(rec.Structure, colStructure), colStructure),
			padRight(fmt.Sprintf("%.1f%%", rec.SuccessRate), colSuccess),
			rec.TimesUsed)
	}
	fmt.Fprintln(w) //nolint:errcheck
}

func printStats(w io.Writer, path string, st store.Stats, mem memory.Stats) {
	fmt.Fprintf(w, "Cache file: %s (%s bytes)\n", path, statsPrinter.Sprint(st.FileSizeBytes)) //nolint:errcheck
	fmt.Fprintf(w, "Solutions: %s  Patterns: %s  Total hits: %s\n",                            //nolint:errcheck
		statsPrinter.Sprint(st.Solutions), statsPrinter.Sprint(st.Patterns), statsPrinter.Sprint(st.TotalHits))
	fmt.Fprintf(w, "Mean accuracy: %.2f%%\n", st.MeanAccuracy) //nolint:errcheck
	fmt.Fprintf(w, "Memory tier: %d resident, %s hot hits, %s bloom rejections\n", //nolint:errcheck
		mem.HotResident, statsPrinter.Sprint(mem.HotHits), statsPrinter.Sprint(mem.BloomRejected))
}
