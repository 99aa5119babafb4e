package experience

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/prompts"
	"github.com/jonathan/prospect-scorer/internal/schemas"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Analyzer scores a job history via AI per-role relevance, falling back to
// the keyword tiers whenever the provider fails. Analyze never returns an
// error: the fallback path is always available.
type Analyzer struct {
	client llm.Client
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
}

// NewAnalyzer builds an Analyzer. A nil client forces the keyword path,
// which some deployments use deliberately.
func NewAnalyzer(client llm.Client, cfg Config, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{client: client, cfg: cfg, log: log, now: time.Now}
}

type roleRelevanceItem struct {
	Index     int     `json:"index"`
	Relevance float64 `json:"relevance"`
	Reasoning string  `json:"reasoning"`
}

// Analyze produces the experience assessment, recording which method ran.
func (a *Analyzer) Analyze(ctx context.Context, exps []types.Experience) types.ExperienceAssessment {
	if len(exps) == 0 {
		return types.ExperienceAssessment{AnalysisMethod: types.MethodKeywords}
	}
	if a.client == nil {
		return FallbackAssess(exps, &a.cfg, a.now())
	}

	assessment, err := a.aiAssess(ctx, exps)
	if err != nil {
		a.log.Warn("experience AI analysis failed, using keyword fallback",
			zap.Int("roles", len(exps)), zap.Error(err))
		return FallbackAssess(exps, &a.cfg, a.now())
	}
	return assessment
}

// ExtractYearsOfExperience is the headline figure callers usually need.
func (a *Analyzer) ExtractYearsOfExperience(ctx context.Context, exps []types.Experience) float64 {
	return a.Analyze(ctx, exps).YearsInIndustry
}

func (a *Analyzer) aiAssess(ctx context.Context, exps []types.Experience) (types.ExperienceAssessment, error) {
	roles := make([]map[string]string, len(exps))
	for i, e := range exps {
		roles[i] = map[string]string{
			"title":       e.Title,
			"company":     e.Company,
			"description": e.Description,
		}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return types.ExperienceAssessment{}, fmt.Errorf("failed to encode roles: %w", err)
	}

	template := prompts.MustGet("scoring.json", "role-relevance")
	prompt := prompts.Format(template, map[string]string{"Roles": string(rolesJSON)})

	resp, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return types.ExperienceAssessment{}, err
	}

	if err := schemas.Validate(schemas.RoleRelevanceBatch, resp); err != nil {
		return types.ExperienceAssessment{}, fmt.Errorf("role relevance response rejected: %w", err)
	}
	var items []roleRelevanceItem
	if err := json.Unmarshal([]byte(resp), &items); err != nil {
		return types.ExperienceAssessment{}, fmt.Errorf("failed to parse role relevance response: %w", err)
	}

	relevance := make(map[int]roleRelevanceItem, len(items))
	for _, item := range items {
		item.Relevance = types.Clamp(item.Relevance, 0, 1)
		relevance[item.Index] = item
	}

	now := a.now()
	weighted, totalYears := 0.0, 0.0
	breakdown := make([]types.RoleRelevance, 0, len(exps))
	for i, e := range exps {
		years := math.Min(e.Duration(now), a.cfg.RoleCapYears)
		totalYears += years
		item := relevance[i]
		weighted += years * item.Relevance
		breakdown = append(breakdown, types.RoleRelevance{
			Title:     e.Title,
			Company:   e.Company,
			Relevance: item.Relevance,
			Years:     years,
			Reasoning: item.Reasoning,
		})
	}
	weighted = math.Min(weighted, a.cfg.TotalCapYears)

	relevancy := 0.0
	if totalYears > 0 {
		relevancy = types.Clamp(weighted/totalYears, 0, 1)
	}

	return types.ExperienceAssessment{
		YearsInIndustry:   weighted,
		RelevancyScore:    relevancy,
		CareerConsistency: consistency(exps, now),
		RoleBreakdown:     breakdown,
		AnalysisMethod:    types.MethodAI,
	}, nil
}
