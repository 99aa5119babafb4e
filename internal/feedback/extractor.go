package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/prompts"
	"github.com/jonathan/prospect-scorer/internal/schemas"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Extractor turns feedback text into typed signals. The AI pass is
// optional enrichment: it augments the deterministic pattern output and
// degrades silently when the provider fails.
type Extractor struct {
	client llm.Client
	log    *zap.Logger
}

// NewExtractor builds an Extractor. A nil client disables the AI pass.
func NewExtractor(client llm.Client, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{client: client, log: log}
}

// ExtractSignals runs sentiment derivation and the detector battery
// over the feedback text, then merges in AI-extracted signals keyed by
// name. The sentiment always comes from the text, never from the
// caller's relevance flag.
func (e *Extractor) ExtractSignals(ctx context.Context, fb *types.Feedback) ExtractedSignals {
	out := ExtractSignalsFromText(fb.Text)

	if e.client == nil || strings.TrimSpace(fb.Text) == "" {
		return out
	}

	aiSignals, err := e.aiExtract(ctx, fb)
	if err != nil {
		e.log.Warn("AI signal extraction failed, keeping pattern-only output",
			zap.String("feedback_id", fb.ID.String()), zap.Error(err))
		return out
	}

	seen := make(map[string]struct{}, len(out.Signals))
	for _, s := range out.Signals {
		seen[s.Name] = struct{}{}
	}
	for _, s := range aiSignals {
		if _, dup := seen[s.Name]; dup {
			continue
		}
		seen[s.Name] = struct{}{}
		out.Signals = append(out.Signals, s)
		if flag := correctionFlag(s); flag != "" && !contains(out.CorrectionFlags, flag) {
			out.CorrectionFlags = append(out.CorrectionFlags, flag)
		}
	}
	return out
}

// ExtractSignalsFromText is the deterministic pattern-only extraction,
// exposed independently for testing and for callers with no AI client.
func ExtractSignalsFromText(text string) ExtractedSignals {
	out := ExtractedSignals{Sentiment: deriveSentiment(text)}

	switch out.Sentiment {
	case SentimentPositive:
		relevant := true
		out.IsRelevant = &relevant
	case SentimentNegative:
		relevant := false
		out.IsRelevant = &relevant
	}

	for _, d := range detectors {
		if !d.pattern.MatchString(text) {
			continue
		}
		s := Signal{
			Name:     d.name,
			Category: d.category,
			Polarity: d.polarity,
			Source:   "pattern",
		}
		out.Signals = append(out.Signals, s)
		if flag := correctionFlag(s); flag != "" && !contains(out.CorrectionFlags, flag) {
			out.CorrectionFlags = append(out.CorrectionFlags, flag)
		}
	}
	return out
}

// deriveSentiment counts strong-polarity and action-phrasing hits.
func deriveSentiment(text string) Sentiment {
	positive := len(strongPositive.FindAllString(text, -1)) + len(actionPositive.FindAllString(text, -1))
	negative := len(strongNegative.FindAllString(text, -1)) + len(actionNegative.FindAllString(text, -1))
	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	}
	return SentimentNeutral
}

func correctionFlag(s Signal) string {
	switch s.Category {
	case CategoryRoleCorrection, CategoryCompanyCorrection:
		return s.Name
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type aiSignalItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Polarity string `json:"polarity"`
	Detail   string `json:"detail"`
}

func (e *Extractor) aiExtract(ctx context.Context, fb *types.Feedback) ([]Signal, error) {
	template := prompts.MustGet("feedback.json", "extract-signals")
	prompt := prompts.Format(template, map[string]string{
		"Text":          fb.Text,
		"OriginalScore": fmt.Sprintf("%.1f", fb.OriginalScore),
		"Industry":      fb.Industry,
		"Role":          fb.Role,
	})

	resp, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.FeedbackSignals, resp); err != nil {
		return nil, fmt.Errorf("signal extraction response rejected: %w", err)
	}

	var parsed struct {
		Signals []aiSignalItem `json:"signals"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse signal extraction response: %w", err)
	}

	out := make([]Signal, 0, len(parsed.Signals))
	for _, item := range parsed.Signals {
		polarity := PolarityNegative
		if item.Polarity == string(PolarityPositive) {
			polarity = PolarityPositive
		}
		out = append(out, Signal{
			Name:     item.Name,
			Category: item.Category,
			Polarity: polarity,
			Detail:   item.Detail,
			Source:   "ai",
		})
	}
	return out, nil
}
