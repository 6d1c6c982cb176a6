package responder

import (
	"context"
	"fmt"
	"strings"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/signals"
)

// rule maps trigger keywords to a canned reply. Rules are checked in order;
// the first hit wins.
type rule struct {
	keywords []string
	reply    string
	actions  []domain.QuickAction
}

var composerRules = []rule{
	{
		keywords: []string{"cost", "price", "how much", "estimate", "quote"},
		reply: "Pricing depends on roof size, pitch and material. Most repairs run " +
			"$300-$1,500 and full replacements start around $8,000. I can set up a " +
			"free on-site estimate so you get an exact number.",
		actions: []domain.QuickAction{
			{ID: "qa-estimate", Label: "Request a free estimate", Action: domain.ActionRequestCallback},
			{ID: "qa-inspect", Label: "Schedule an inspection", Action: domain.ActionScheduleInspection},
		},
	},
	{
		keywords: []string{"leak", "leaking", "water", "drip"},
		reply: "A leak can do a lot of damage quickly. Move anything valuable out " +
			"from under it and put a container down if you can. We can usually get " +
			"a crew out within 24 hours for active leaks.",
		actions: []domain.QuickAction{
			{ID: "qa-callback", Label: "Have someone call me", Action: domain.ActionRequestCallback},
		},
	},
	{
		keywords: []string{"replace", "replacement", "new roof"},
		reply: "A full replacement typically takes one to two days once materials " +
			"arrive. We work with asphalt shingle, metal and tile. Would you like " +
			"to schedule a free inspection to get started?",
		actions: []domain.QuickAction{
			{ID: "qa-inspect", Label: "Schedule an inspection", Action: domain.ActionScheduleInspection},
		},
	},
	{
		keywords: []string{"insurance", "claim", "hail", "storm"},
		reply: "We handle insurance claims regularly and can document storm or hail " +
			"damage for your adjuster. An inspection report usually speeds the claim " +
			"up considerably.",
		actions: []domain.QuickAction{
			{ID: "qa-inspect", Label: "Schedule an inspection", Action: domain.ActionScheduleInspection},
		},
	},
	{
		keywords: []string{"inspect", "inspection", "check"},
		reply: "Our inspections are free and take about 45 minutes. We photograph " +
			"everything and walk you through what we find, no obligation.",
		actions: []domain.QuickAction{
			{ID: "qa-inspect", Label: "Schedule an inspection", Action: domain.ActionScheduleInspection},
		},
	},
	{
		keywords: []string{"hello", "hi ", "hey"},
		reply: "Hi! I can help with roof repairs, replacements, inspections and " +
			"emergency service. What's going on with your roof?",
	},
}

const emergencyReply = "That sounds urgent. Our emergency line is staffed around the " +
	"clock, call (512) 555-0199 right now and we will dispatch a crew. If water is " +
	"coming in, keep clear of any sagging ceiling sections."

const defaultReply = "Thanks for reaching out. Could you tell me a bit more about " +
	"your roof, is this a repair, a replacement, or would you like an inspection?"

var emergencyActions = []domain.QuickAction{
	{ID: "qa-emergency", Label: "Call emergency line", Action: domain.ActionEmergencyContact, Value: "(512) 555-0199"},
	{ID: "qa-callback", Label: "Have someone call me", Action: domain.ActionRequestCallback},
}

// RuleResponder is the always-available fallback. It composes replies from
// keyword rules and never returns an error.
type RuleResponder struct{}

func NewRuleResponder() *RuleResponder {
	return &RuleResponder{}
}

func (r *RuleResponder) Respond(_ context.Context, req Request) (Reply, error) {
	text := strings.ToLower(req.Message)

	if assessment := signals.AssessEmergency(req.Message); assessment.IsEmergency {
		return Reply{
			Text:         personalize(emergencyReply, req.UserInfo.Name),
			QuickActions: emergencyActions,
		}, nil
	}

	for _, rule := range composerRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return Reply{
					Text:         personalize(rule.reply, req.UserInfo.Name),
					QuickActions: rule.actions,
				}, nil
			}
		}
	}

	return Reply{Text: personalize(defaultReply, req.UserInfo.Name)}, nil
}

func personalize(reply, name string) string {
	if name == "" {
		return reply
	}
	first := strings.Fields(name)[0]
	return fmt.Sprintf("%s, %s%s", first, strings.ToLower(reply[:1]), reply[1:])
}
