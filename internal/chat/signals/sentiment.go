package signals

import (
	"strings"

	"roofchat_backend/internal/chat/domain"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var (
	positiveWords = []string{
		"great", "thanks", "thank you", "perfect", "awesome",
		"good", "helpful", "appreciate", "excellent", "yes please",
	}
	negativeWords = []string{
		"frustrated", "angry", "terrible", "awful", "bad",
		"worst", "annoyed", "disappointed", "ridiculous", "waste",
	}
)

// Sentiment tallies positive and negative keyword hits across all user
// messages. The verdict needs a margin of more than one hit in either
// direction; anything closer is neutral.
func Sentiment(messages []domain.Message) string {
	positive, negative := 0, 0
	for _, m := range messages {
		if m.Role != domain.RoleUser {
			continue
		}
		lowered := strings.ToLower(m.Content)
		for _, w := range positiveWords {
			if strings.Contains(lowered, w) {
				positive++
			}
		}
		for _, w := range negativeWords {
			if strings.Contains(lowered, w) {
				negative++
			}
		}
	}
	switch {
	case positive-negative > 1:
		return SentimentPositive
	case negative-positive > 1:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
