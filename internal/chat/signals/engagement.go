package signals

import (
	"strings"

	"roofchat_backend/internal/chat/domain"
)

// EngagementScore rates how invested the visitor is, on a 0-100 scale. Five
// components contribute, each with its own cap:
//
//	message count      +3 per user message, max 30
//	response ratio     10 x (user/bot), max 20, 0 when no bot replies yet
//	message depth      by average user message length, max 25
//	questions asked    +5 per user message containing "?", max 15
//	contact shared     name +3, email +4, phone +3, max 10
func EngagementScore(messages []domain.Message, info domain.UserInfo) int {
	var userMsgs []domain.Message
	botCount := 0
	for _, m := range messages {
		switch m.Role {
		case domain.RoleUser:
			userMsgs = append(userMsgs, m)
		case domain.RoleBot:
			botCount++
		}
	}

	score := clampInt(len(userMsgs)*3, 0, 30)
	score += responseRatioScore(len(userMsgs), botCount)
	score += messageDepthScore(userMsgs)
	score += questionScore(userMsgs)
	score += contactBonus(info, 3, 4, 3, 10)
	return clampInt(score, 0, 100)
}

func responseRatioScore(userCount, botCount int) int {
	if botCount == 0 {
		return 0
	}
	ratio := float64(userCount) / float64(botCount)
	return clampInt(int(ratio*10), 0, 20)
}

func messageDepthScore(userMsgs []domain.Message) int {
	if len(userMsgs) == 0 {
		return 0
	}
	total := 0
	for _, m := range userMsgs {
		total += len(m.Content)
	}
	avg := total / len(userMsgs)
	switch {
	case avg > 100:
		return 25
	case avg > 50:
		return 15
	case avg > 20:
		return 10
	default:
		return 5
	}
}

func questionScore(userMsgs []domain.Message) int {
	count := 0
	for _, m := range userMsgs {
		if strings.Contains(m.Content, "?") {
			count++
		}
	}
	return clampInt(count*5, 0, 15)
}

func contactBonus(info domain.UserInfo, nameBonus, emailBonus, phoneBonus, cap int) int {
	bonus := 0
	if info.Name != "" {
		bonus += nameBonus
	}
	if info.Email != "" {
		bonus += emailBonus
	}
	if info.Phone != "" {
		bonus += phoneBonus
	}
	return clampInt(bonus, 0, cap)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
