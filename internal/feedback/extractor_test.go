package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/types"
)

type stubClient struct {
	response string
	err      error
}

func (s *stubClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (s *stubClient) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "mock" }
func (s *stubClient) Close() error                  { return nil }

func TestDeriveSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Sentiment
	}{
		{"strong positive", "Excellent match, spot-on recommendation.", SentimentPositive},
		{"strong negative", "Completely wrong, waste of time.", SentimentNegative},
		{"action positive", "I'm reaching out to him today.", SentimentPositive},
		{"action negative", "Skipping this one, not worth it.", SentimentNegative},
		{"mixed leans negative", "Great profile but skipping this, not worth the effort.", SentimentNegative},
		{"neutral", "Noted.", SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveSentiment(tt.text))
		})
	}
}

func TestExtractSignalsFromText_SentimentOverridesCallerFlag(t *testing.T) {
	// The text is clearly negative; whatever relevance flag the caller
	// attached to the record must not survive extraction.
	out := ExtractSignalsFromText("Terrible suggestion, I'm passing on this one.")
	assert.Equal(t, SentimentNegative, out.Sentiment)
	require.NotNil(t, out.IsRelevant)
	assert.False(t, *out.IsRelevant)
}

func TestExtractSignalsFromText_DetectorBattery(t *testing.T) {
	out := ExtractSignalsFromText(
		"This reads like AI-generated boilerplate, and he's a self-proclaimed guru. Wrong role too, he's not a broker anymore.")

	names := make(map[string]Signal)
	for _, s := range out.Signals {
		names[s.Name] = s
	}

	require.Contains(t, names, "ai_generated_content")
	assert.Equal(t, CategoryContentAuthenticity, names["ai_generated_content"].Category)
	assert.Equal(t, PolarityNegative, names["ai_generated_content"].Polarity)
	assert.Equal(t, "pattern", names["ai_generated_content"].Source)

	require.Contains(t, names, "inflated_credentials")
	require.Contains(t, names, "wrong_role")
	assert.Contains(t, out.CorrectionFlags, "wrong_role")
}

func TestExtractSignalsFromText_PositiveSignals(t *testing.T) {
	out := ExtractSignalsFromText(
		"Authentic voice, clearly written posts, he's closed real deals. More like this please. Worth a call.")

	var names []string
	for _, s := range out.Signals {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "authentic_voice")
	assert.Contains(t, names, "clear_writing")
	assert.Contains(t, names, "deep_deal_experience")
	assert.Contains(t, names, "prefers_more_like_this")
	assert.Equal(t, SentimentPositive, out.Sentiment)
	assert.Empty(t, out.CorrectionFlags)
}

func TestExtractSignals_AIMergeDeduplicatesByName(t *testing.T) {
	client := &stubClient{response: `{"signals": [
		{"name": "ai_generated_content", "category": "content_authenticity", "polarity": "negative", "detail": "dup of pattern hit"},
		{"name": "stale_company_info", "category": "company_correction", "polarity": "negative", "detail": "left the firm last year"}
	]}`}
	e := NewExtractor(client, nil)

	fb := &types.Feedback{Text: "Reads like AI-generated boilerplate."}
	out := e.ExtractSignals(context.Background(), fb)

	count := 0
	var aiSignal *Signal
	for i, s := range out.Signals {
		if s.Name == "ai_generated_content" {
			count++
		}
		if s.Name == "stale_company_info" {
			aiSignal = &out.Signals[i]
		}
	}
	assert.Equal(t, 1, count, "AI duplicate of a pattern signal must be dropped")
	require.NotNil(t, aiSignal, "novel AI signal must be merged in")
	assert.Equal(t, "ai", aiSignal.Source)
	assert.Contains(t, out.CorrectionFlags, "stale_company_info")
}

func TestExtractSignals_AIFailureDegradesSilently(t *testing.T) {
	e := NewExtractor(&stubClient{err: errors.New("quota exceeded")}, nil)

	fb := &types.Feedback{Text: "Reads like AI-generated boilerplate."}
	out := e.ExtractSignals(context.Background(), fb)

	require.Len(t, out.Signals, 1)
	assert.Equal(t, "ai_generated_content", out.Signals[0].Name)
}

func TestExtractSignals_MalformedAIResponseIgnored(t *testing.T) {
	e := NewExtractor(&stubClient{response: `{"signals": "not an array"}`}, nil)
	out := e.ExtractSignals(context.Background(), &types.Feedback{Text: "Reads like AI-generated boilerplate."})
	require.Len(t, out.Signals, 1)
	assert.Equal(t, "pattern", out.Signals[0].Source)
}

func TestExtractSignals_EmptyTextSkipsAI(t *testing.T) {
	client := &stubClient{response: `{"signals": []}`}
	e := NewExtractor(client, nil)
	out := e.ExtractSignals(context.Background(), &types.Feedback{Text: "   "})
	assert.Equal(t, SentimentNeutral, out.Sentiment)
	assert.Nil(t, out.IsRelevant)
	assert.Empty(t, out.Signals)
}
