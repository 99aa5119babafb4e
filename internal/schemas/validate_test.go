package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ContentBatch_Valid(t *testing.T) {
	doc := `[{"index": 0, "authenticity": 8, "expertise": 7, "specificity": 6, "professionalism": 9, "red_flags": [], "reasoning": "solid"}]`
	assert.NoError(t, Validate(ContentAnalysisBatch, doc))
}

func TestValidate_ContentBatch_MissingField(t *testing.T) {
	doc := `[{"index": 0, "authenticity": 8}]`
	err := Validate(ContentAnalysisBatch, doc)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ContentAnalysisBatch, verr.Schema)
	assert.NotEmpty(t, verr.Errors)
}

func TestValidate_ContentBatch_MalformedJSON(t *testing.T) {
	err := Validate(ContentAnalysisBatch, `not json at all`)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestValidate_RoleBatch(t *testing.T) {
	assert.NoError(t, Validate(RoleRelevanceBatch, `[{"index": 0, "relevance": 0.8, "reasoning": "direct"}]`))
	assert.Error(t, Validate(RoleRelevanceBatch, `[{"relevance": 0.8}]`))
}

func TestValidate_FeedbackSignals(t *testing.T) {
	assert.NoError(t, Validate(FeedbackSignals, `{"signals": [{"name": "generic_content", "category": "content_authenticity", "polarity": "negative"}]}`))
	assert.Error(t, Validate(FeedbackSignals, `{"signals": [{"name": "x", "category": "y", "polarity": "meh"}]}`))
}
