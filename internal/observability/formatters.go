// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/prospect-scorer/internal/adaptation"
	"github.com/jonathan/prospect-scorer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPrediction outputs a human-readable summary of a scoring result.
func (p *Printer) PrintPrediction(pred *types.Prediction) {
	if pred == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Prospect:   %s\n", pred.ProspectID))
	sb.WriteString(fmt.Sprintf("Decision:   %s (%.0f%% confidence)\n", pred.Decision, pred.Confidence))
	sb.WriteString(fmt.Sprintf("Data:       %s, model %s\n", pred.Learning.DataQuality, pred.Learning.ModelVersion))
	sb.WriteString("\n")

	s := pred.Scores
	sb.WriteString("Score breakdown:\n")
	sb.WriteString(fmt.Sprintf("  pattern    %+.2f\n", s.PatternScore))
	sb.WriteString(fmt.Sprintf("  similarity %+.2f\n", s.SimilarityScore))
	sb.WriteString(fmt.Sprintf("  content    %+.2f\n", s.ContentScore))
	sb.WriteString(fmt.Sprintf("  experience %+.2f\n", s.ExperienceScore))
	if s.RedFlagPenalty != 0 {
		sb.WriteString(fmt.Sprintf("  red flags  %+.2f\n", s.RedFlagPenalty))
	}
	sb.WriteString(fmt.Sprintf("  final      %+.2f\n", s.FinalScore))

	if len(pred.Reasoning.PrimaryFactors) > 0 {
		sb.WriteString("\nPrimary factors:\n")
		count := min(len(pred.Reasoning.PrimaryFactors), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", pred.Reasoning.PrimaryFactors[i]))
		}
		if len(pred.Reasoning.PrimaryFactors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(pred.Reasoning.PrimaryFactors)-maxItemsToShow))
		}
	}

	if len(pred.Reasoning.ConcerningSignals) > 0 {
		sb.WriteString("\nConcerning signals:\n")
		count := min(len(pred.Reasoning.ConcerningSignals), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", pred.Reasoning.ConcerningSignals[i]))
		}
		if len(pred.Reasoning.ConcerningSignals) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(pred.Reasoning.ConcerningSignals)-3))
		}
	}

	if len(pred.Reasoning.SimilarProspects) > 0 {
		sb.WriteString("\nSimilar prospects:\n")
		count := min(len(pred.Reasoning.SimilarProspects), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", pred.Reasoning.SimilarProspects[i]))
		}
	}

	p.printBox("PROSPECT PREDICTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAdaptation outputs the personalization applied to a score.
func (p *Printer) PrintAdaptation(original float64, res adaptation.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Original:   %.2f\n", original))
	sb.WriteString(fmt.Sprintf("Adjusted:   %.2f (%+.2f)\n", res.AdaptedScore, res.Adjustment))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", res.Confidence))

	if len(res.Reasons) > 0 {
		sb.WriteString("\nReasons:\n")
		count := min(len(res.Reasons), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", res.Reasons[i]))
		}
		if len(res.Reasons) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(res.Reasons)-maxItemsToShow))
		}
	}

	p.printBox("PERSONALIZED SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPipelineRun outputs the result of a learning pipeline run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPipelineRun(run *types.PipelineRun) {
	if run == nil {
		return
	}

	if run.IsSuccessful && len(run.Errors) == 0 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Batch:      %s\n", run.BatchKey))
		sb.WriteString(fmt.Sprintf("Feedback:   %d (%d valid, %d rejected)\n",
			run.FeedbackCount, run.ValidCount, run.RejectedCount))
		sb.WriteString(fmt.Sprintf("Patterns:   %d discovered, %d updated",
			run.PatternsDiscovered, run.PatternsUpdated))
		p.printBox("✅ LEARNING RUN COMPLETE", sb.String())
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stage:      %s\n", run.Stage))
	sb.WriteString(fmt.Sprintf("Feedback:   %d\n", run.FeedbackCount))
	if run.RequiresManualReview {
		sb.WriteString("Status:     requires manual review\n")
	}
	if len(run.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for i, e := range run.Errors {
			if len(e) > 45 {
				e = e[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("⚠ %s", e))
			if i < len(run.Errors)-1 {
				sb.WriteString("\n")
			}
		}
	}

	p.printBox("LEARNING RUN FAILED", strings.TrimSuffix(sb.String(), "\n"))
}
