package feedback

import "regexp"

// detector is one row of the declarative pattern table. The battery is
// data: adding a detector means adding a row, not code.
type detector struct {
	name     string
	category string
	pattern  *regexp.Regexp
	polarity Polarity
}

var detectors = []detector{
	// Content authenticity.
	{"authentic_voice", CategoryContentAuthenticity, regexp.MustCompile(`(?i)\b(authentic|genuine|real (deal|experience)|sounds like a real)\b`), PolarityPositive},
	{"ai_generated_content", CategoryContentAuthenticity, regexp.MustCompile(`(?i)\b(ai[- ]generated|chatgpt|boilerplate|copy[- ]?paste(d)?|templated)\b`), PolarityNegative},
	{"engagement_bait", CategoryContentAuthenticity, regexp.MustCompile(`(?i)\b(engagement bait|clickbait|spammy|self[- ]promot)`), PolarityNegative},

	// Network quality.
	{"strong_network", CategoryNetworkQuality, regexp.MustCompile(`(?i)\b(well[- ]connected|strong network|knows everyone|good connections)\b`), PolarityPositive},
	{"weak_network", CategoryNetworkQuality, regexp.MustCompile(`(?i)\b(no (real )?network|poorly connected|nobody (serious|credible) follows)\b`), PolarityNegative},

	// Authority / expertise.
	{"recognized_authority", CategoryAuthority, regexp.MustCompile(`(?i)\b(thought leader|recognized expert|authority (in|on)|industry veteran)\b`), PolarityPositive},
	{"inflated_credentials", CategoryAuthority, regexp.MustCompile(`(?i)\b(overstat|inflated|self[- ]proclaimed|so[- ]called expert|guru)\b`), PolarityNegative},

	// Linguistic quality.
	{"clear_writing", CategoryLinguisticQuality, regexp.MustCompile(`(?i)\b(well[- ]written|articulate|clear(ly)? (written|communicates))\b`), PolarityPositive},
	{"poor_writing", CategoryLinguisticQuality, regexp.MustCompile(`(?i)\b(typos|sloppy writing|hard to read|poorly written|word salad)\b`), PolarityNegative},

	// Professional depth.
	{"deep_deal_experience", CategoryProfessionalDepth, regexp.MustCompile(`(?i)\b(closed (real )?deals|deal experience|has (actually )?(sold|brokered)|hands[- ]on (m&a|brokerage))\b`), PolarityPositive},
	{"surface_level", CategoryProfessionalDepth, regexp.MustCompile(`(?i)\b(surface[- ]level|generic advice|no (real|actual) experience|all theory)\b`), PolarityNegative},

	// Corrections.
	{"wrong_industry", CategoryRoleCorrection, regexp.MustCompile(`(?i)\b(wrong industry|not (in|even in) (this|the|that) industry|industry is (wrong|off))\b`), PolarityNegative},
	{"wrong_role", CategoryRoleCorrection, regexp.MustCompile(`(?i)\b(wrong role|not (a|an) (broker|advisor)|role is (wrong|off)|mislabel)`), PolarityNegative},
	{"wrong_company", CategoryCompanyCorrection, regexp.MustCompile(`(?i)\b(wrong company|doesn'?t work (there|at)|left that (company|firm))\b`), PolarityNegative},

	// General preference statements.
	{"prefers_more_like_this", CategoryPreference, regexp.MustCompile(`(?i)\b(more like this|exactly (the|my) (type|kind)|perfect fit|ideal prospect)\b`), PolarityPositive},
	{"prefers_fewer_like_this", CategoryPreference, regexp.MustCompile(`(?i)\b(fewer like this|not my (type|market)|stop showing|wrong fit)\b`), PolarityNegative},
}

// Sentiment keyword categories. Contextual action phrasing ("reach
// out" vs "skip") counts alongside the plain polarity terms.
var (
	strongPositive = regexp.MustCompile(`(?i)\b(excellent|great|perfect|love (this|it)|spot[- ]on|exactly right|very relevant)\b`)
	strongNegative = regexp.MustCompile(`(?i)\b(terrible|awful|useless|completely (wrong|off)|waste of time|irrelevant)\b`)
	actionPositive = regexp.MustCompile(`(?i)\b(reach(ing)? out|contact(ing|ed)? (him|her|them)|definitely (contact|pursue)|worth (a|the) (call|conversation))\b`)
	actionNegative = regexp.MustCompile(`(?i)\b(skip(ping)? (this|him|her|them)|pass(ing)? on|not worth|don'?t bother|hard pass)\b`)
)
