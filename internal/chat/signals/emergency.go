package signals

import "strings"

// Keyword tiers for roofing emergencies. Critical means active structural or
// water intrusion, high means urgent damage, medium means wear that should be
// looked at. A message can match several tiers; the highest one wins.
var (
	criticalKeywords = []string{
		"flooding", "flood", "collapse", "collapsed", "caving in",
		"water pouring", "pouring in", "tree fell", "tree on roof",
		"gaping hole", "structural damage", "ceiling falling",
	}
	highKeywords = []string{
		"leak", "leaking", "water damage", "missing shingles",
		"storm damage", "hail damage", "wind damage", "emergency",
		"urgent", "asap", "right away", "immediately",
	}
	mediumKeywords = []string{
		"sagging", "dripping", "drip", "water stain", "cracked",
		"loose shingles", "worn", "old roof", "damaged",
	}
)

// EmergencyAssessment is the result of scanning one message. Urgency is 0 when
// nothing matched; MatchedKeywords collects every keyword that hit, across all
// tiers, for audit.
type EmergencyAssessment struct {
	IsEmergency     bool     `json:"isEmergency"`
	UrgencyLevel    int      `json:"urgencyLevel"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
}

// AssessEmergency scans a single message against all three tiers. It is
// stateless: only the given text is considered, never prior history.
func AssessEmergency(text string) EmergencyAssessment {
	lowered := strings.ToLower(text)

	var assessment EmergencyAssessment
	tiers := []struct {
		level    int
		keywords []string
	}{
		{5, criticalKeywords},
		{4, highKeywords},
		{3, mediumKeywords},
	}
	for _, tier := range tiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lowered, kw) {
				assessment.MatchedKeywords = append(assessment.MatchedKeywords, kw)
				if tier.level > assessment.UrgencyLevel {
					assessment.UrgencyLevel = tier.level
				}
			}
		}
	}
	assessment.IsEmergency = assessment.UrgencyLevel >= 4
	return assessment
}
