package signals

import (
	"reflect"
	"testing"

	"roofchat_backend/internal/chat/domain"
)

func TestExtractUserInfoContactFields(t *testing.T) {
	info := ExtractUserInfo([]string{
		"Hi, my name is Jane Smith and my email is jane@example.com",
		"You can reach me at 555-123-4567",
	})

	if info.Name != "Jane Smith" {
		t.Fatalf("expected name Jane Smith, got %q", info.Name)
	}
	if info.Email != "jane@example.com" {
		t.Fatalf("expected email jane@example.com, got %q", info.Email)
	}
	if info.Phone != "555-123-4567" {
		t.Fatalf("expected phone 555-123-4567, got %q", info.Phone)
	}
}

func TestExtractUserInfoNamePhrasings(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"my name is Bob", "Bob"},
		{"I'm Alice Johnson", "Alice Johnson"},
		{"call me Mike", "Mike"},
		{"this is Sarah", "Sarah"},
		{"how much does a roof cost?", ""},
	}
	for _, tc := range cases {
		info := ExtractUserInfo([]string{tc.text})
		if info.Name != tc.want {
			t.Errorf("text %q: expected name %q, got %q", tc.text, tc.want, info.Name)
		}
	}
}

func TestExtractUserInfoPhoneShapes(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"call 555-123-4567 anytime", "555-123-4567"},
		{"call 555.123.4567 anytime", "555.123.4567"},
		{"call (555) 123-4567 anytime", "(555) 123-4567"},
		{"call 5551234567 anytime", "5551234567"},
		{"no number here", ""},
	}
	for _, tc := range cases {
		info := ExtractUserInfo([]string{tc.text})
		if info.Phone != tc.want {
			t.Errorf("text %q: expected phone %q, got %q", tc.text, tc.want, info.Phone)
		}
	}
}

func TestExtractUserInfoProjectType(t *testing.T) {
	cases := []struct {
		text string
		want domain.ProjectType
	}{
		{"I need emergency roof repair", domain.ProjectEmergency},
		{"looking to repair a few shingles", domain.ProjectRepair},
		{"we want a full roof replacement", domain.ProjectReplacement},
		{"can you do an inspection?", domain.ProjectInspection},
		{"flat roof on our warehouse", domain.ProjectCommercial},
		{"hello there", ""},
	}
	for _, tc := range cases {
		info := ExtractUserInfo([]string{tc.text})
		if info.ProjectType != tc.want {
			t.Errorf("text %q: expected project type %q, got %q", tc.text, tc.want, info.ProjectType)
		}
	}
}

func TestExtractUserInfoUrgencyHighestTierWins(t *testing.T) {
	info := ExtractUserInfo([]string{
		"the roof looks worn",
		"now water is flooding the kitchen",
	})
	if info.UrgencyLevel != 5 {
		t.Fatalf("expected urgency 5, got %d", info.UrgencyLevel)
	}
}

func TestExtractUserInfoLaterMatchUpdatesField(t *testing.T) {
	info := ExtractUserInfo([]string{
		"my email is old@example.com",
		"actually use new@example.com instead",
	})
	if info.Email != "new@example.com" {
		t.Fatalf("expected later email to win, got %q", info.Email)
	}
}

func TestExtractUserInfoIdempotent(t *testing.T) {
	messages := []string{
		"Hi, my name is Jane Smith, jane@example.com, I need emergency roof repair",
	}
	first := ExtractUserInfo(messages)
	second := ExtractUserInfo(messages)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not deterministic: %+v vs %+v", first, second)
	}
	if first.Name != "Jane Smith" || first.Email != "jane@example.com" || first.ProjectType != domain.ProjectEmergency {
		t.Fatalf("unexpected extraction: %+v", first)
	}
}
