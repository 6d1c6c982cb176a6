package signals

import (
	"strings"
	"testing"

	"roofchat_backend/internal/chat/domain"
)

func userMsg(content string) domain.Message {
	return domain.Message{Role: domain.RoleUser, Content: content}
}

func botMsg(content string) domain.Message {
	return domain.Message{Role: domain.RoleBot, Content: content}
}

func TestEngagementScoreBounds(t *testing.T) {
	var messages []domain.Message
	for i := 0; i < 30; i++ {
		messages = append(messages, userMsg(strings.Repeat("a very long detailed question? ", 10)))
		if i%2 == 0 {
			messages = append(messages, botMsg("ok"))
		}
	}
	info := domain.UserInfo{Name: "Jane", Email: "jane@example.com", Phone: "5551234567"}

	score := EngagementScore(messages, info)
	if score < 0 || score > 100 {
		t.Fatalf("score out of bounds: %d", score)
	}
	if score != 100 {
		t.Fatalf("expected saturated score 100, got %d", score)
	}
}

func TestEngagementScoreDeterministic(t *testing.T) {
	messages := []domain.Message{userMsg("hello?"), botMsg("hi"), userMsg("I need help with my roof")}
	info := domain.UserInfo{Email: "jane@example.com"}
	first := EngagementScore(messages, info)
	second := EngagementScore(messages, info)
	if first != second {
		t.Fatalf("score not deterministic: %d vs %d", first, second)
	}
}

func TestEngagementScoreNoBotMessages(t *testing.T) {
	// One 21+ char message: 3 for the count, 0 ratio, 10 depth.
	messages := []domain.Message{userMsg("tell me about metal roofing")}
	score := EngagementScore(messages, domain.UserInfo{})
	if score != 13 {
		t.Fatalf("expected 13, got %d", score)
	}
}

func TestEngagementScoreQuestionCap(t *testing.T) {
	var messages []domain.Message
	for i := 0; i < 5; i++ {
		messages = append(messages, userMsg("ok?"))
	}
	// 5 messages: 15 count, 5 depth (short), questions capped at 15.
	score := EngagementScore(messages, domain.UserInfo{})
	if score != 35 {
		t.Fatalf("expected 35, got %d", score)
	}
}

func TestEngagementContactBonus(t *testing.T) {
	messages := []domain.Message{userMsg("hi")}
	base := EngagementScore(messages, domain.UserInfo{})
	full := EngagementScore(messages, domain.UserInfo{Name: "Jane", Email: "j@e.com", Phone: "5551234567"})
	if full-base != 10 {
		t.Fatalf("expected full contact to add 10, got %d", full-base)
	}
}

func TestSentiment(t *testing.T) {
	cases := []struct {
		texts []string
		want  string
	}{
		{[]string{"this is great, thanks, very helpful"}, SentimentPositive},
		{[]string{"terrible service, I am frustrated and annoyed"}, SentimentNegative},
		{[]string{"thanks but this is bad"}, SentimentNeutral},
		{[]string{"how much is a new roof"}, SentimentNeutral},
	}
	for _, tc := range cases {
		var messages []domain.Message
		for _, text := range tc.texts {
			messages = append(messages, userMsg(text))
		}
		if got := Sentiment(messages); got != tc.want {
			t.Errorf("texts %v: expected %s, got %s", tc.texts, tc.want, got)
		}
	}
}
