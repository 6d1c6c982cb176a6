// Package scoring turns conversation signals into a 0-100 lead score.
package scoring

import (
	"strings"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/signals"
	"roofchat_backend/platform/logger"
)

// Classification bands.
const (
	BandHot        = "hot"
	BandQualified  = "qualified"
	BandInterested = "interested"
	BandNew        = "new"

	hotThreshold       = 70
	qualifiedThreshold = 50
)

// projectTypeWeights reflects deal size and conversion likelihood for each
// project type. Unknown projects still get a small base weight.
var projectTypeWeights = map[domain.ProjectType]float64{
	domain.ProjectCommercial:  30,
	domain.ProjectReplacement: 25,
	domain.ProjectEmergency:   25,
	domain.ProjectRepair:      15,
	domain.ProjectInspection:  10,
}

const unknownProjectWeight = 5

var buyingIntentKeywords = []string{
	"cost", "price", "quote", "estimate", "budget",
	"schedule", "appointment", "hire",
}

// serviceAreaPlaces are the towns the contractor serves. A mention of any of
// them in user text earns the flat location bonus.
var serviceAreaPlaces = []string{
	"austin", "round rock", "cedar park", "pflugerville",
	"georgetown", "leander", "hutto", "buda", "kyle", "lakeway",
}

// Result carries the composite score with its per-factor breakdown so callers
// can log or archive why a lead scored the way it did.
type Result struct {
	Score          int                `json:"score"`
	Classification string             `json:"classification"`
	Factors        map[string]float64 `json:"factors"`
	Engagement     int                `json:"engagement"`
	Sentiment      string             `json:"sentiment"`
}

// Service computes lead scores. It is stateless and safe for concurrent use.
type Service struct {
	logger *logger.Logger
}

func NewService(log *logger.Logger) *Service {
	return &Service{logger: log}
}

// Score evaluates the full conversation. Seven weighted factors contribute,
// each bounded, and the sum is clamped to [0, 100].
func (s *Service) Score(conv *domain.Conversation, info domain.UserInfo) Result {
	engagement := signals.EngagementScore(conv.Messages, info)
	factors := map[string]float64{
		"urgency":             s.scoreUrgency(conv, info),
		"projectType":         s.scoreProjectType(info.ProjectType),
		"contactCompleteness": s.scoreContact(info),
		"buyingIntent":        s.scoreBuyingIntent(conv),
		"location":            s.scoreLocation(conv),
		"conversationLength":  clampFloat(float64(engagement)*0.15, 0, 15),
		"engagementQuality":   clampFloat(float64(engagement)*0.10, 0, 10),
	}

	total := 0.0
	for _, v := range factors {
		total += v
	}
	score := clampScore(int(total))

	result := Result{
		Score:          score,
		Classification: Classify(score),
		Factors:        factors,
		Engagement:     engagement,
		Sentiment:      signals.Sentiment(conv.Messages),
	}
	if s.logger != nil {
		s.logger.Debug("lead scored",
			"session_id", conv.SessionID,
			"score", score,
			"classification", result.Classification,
		)
	}
	return result
}

// Classify maps a score to its band. A zero score means the conversation has
// produced no signal yet.
func Classify(score int) string {
	switch {
	case score == 0:
		return BandNew
	case score >= hotThreshold:
		return BandHot
	case score >= qualifiedThreshold:
		return BandQualified
	default:
		return BandInterested
	}
}

// scoreUrgency prefers the urgency level already extracted from the history;
// when none exists it falls back to assessing the latest user message.
func (s *Service) scoreUrgency(conv *domain.Conversation, info domain.UserInfo) float64 {
	level := info.UrgencyLevel
	if level == 0 {
		if last := conv.LastUserMessage(); last != "" {
			level = signals.AssessEmergency(last).UrgencyLevel
		}
	}
	return clampFloat(float64(level)*6, 0, 30)
}

func (s *Service) scoreProjectType(pt domain.ProjectType) float64 {
	if w, ok := projectTypeWeights[pt]; ok {
		return w
	}
	return unknownProjectWeight
}

func (s *Service) scoreContact(info domain.UserInfo) float64 {
	bonus := 0.0
	if info.Name != "" {
		bonus += 3
	}
	if info.Email != "" {
		bonus += 4
	}
	if info.Phone != "" {
		bonus += 3
	}
	return clampFloat(bonus, 0, 25)
}

func (s *Service) scoreBuyingIntent(conv *domain.Conversation) float64 {
	text := strings.ToLower(conv.UserText())
	bonus := 0.0
	for _, kw := range buyingIntentKeywords {
		if strings.Contains(text, kw) {
			bonus += 3
		}
	}
	return clampFloat(bonus, 0, 15)
}

func (s *Service) scoreLocation(conv *domain.Conversation) float64 {
	text := strings.ToLower(conv.UserText())
	for _, place := range serviceAreaPlaces {
		if strings.Contains(text, place) {
			return 10
		}
	}
	return 0
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
