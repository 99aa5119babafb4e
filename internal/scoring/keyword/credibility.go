package keyword

import (
	"strings"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// credibility computes the additive credibility score with one label per
// contributing signal, for explainability.
func credibility(p *types.Prospect, cfg *Config) (float64, []string) {
	var text strings.Builder
	text.WriteString(p.Headline)
	text.WriteString(" ")
	for _, e := range p.Experience {
		text.WriteString(e.Text())
		text.WriteString(" ")
		text.WriteString(e.Company)
		text.WriteString(" ")
	}
	lower := strings.ToLower(text.String())

	score := 0.0
	var signals []string

	if term := firstMatch(lower, cfg.LicenseTerms); term != "" {
		score += cfg.LicenseCredit
		signals = append(signals, "licensing/certification: "+term)
	}
	if term := firstMatch(lower, cfg.PrestigiousEmployers); term != "" {
		score += cfg.EmployerCredit
		signals = append(signals, "prestigious employer: "+term)
	}
	if term := firstMatch(lower, cfg.AcademicTerms); term != "" {
		score += cfg.AcademicCredit
		signals = append(signals, "academic/teaching role: "+term)
	}
	if term := firstMatch(lower, cfg.AdvisoryTerms); term != "" {
		score += cfg.AdvisoryCredit
		signals = append(signals, "advisory role: "+term)
	}
	if term := firstMatch(lower, cfg.DegreeTerms); term != "" {
		score += cfg.DegreeCredit
		signals = append(signals, "advanced degree: "+term)
	}

	return types.Clamp(score, 0, 10), signals
}

func firstMatch(lower string, terms []string) string {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}
