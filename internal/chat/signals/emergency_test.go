package signals

import "testing"

func TestAssessEmergencyCriticalTier(t *testing.T) {
	a := AssessEmergency("Water is flooding into my living room!")
	if !a.IsEmergency {
		t.Fatal("expected emergency")
	}
	if a.UrgencyLevel != 5 {
		t.Fatalf("expected urgency 5, got %d", a.UrgencyLevel)
	}
	if len(a.MatchedKeywords) == 0 {
		t.Fatal("expected matched keywords")
	}
}

func TestAssessEmergencyHighTier(t *testing.T) {
	a := AssessEmergency("my roof is leaking after the storm")
	if !a.IsEmergency {
		t.Fatal("expected emergency")
	}
	if a.UrgencyLevel != 4 {
		t.Fatalf("expected urgency 4, got %d", a.UrgencyLevel)
	}
}

func TestAssessEmergencyMediumTierNotEmergency(t *testing.T) {
	a := AssessEmergency("the ceiling has a water stain")
	if a.IsEmergency {
		t.Fatal("medium tier should not flag emergency")
	}
	if a.UrgencyLevel != 3 {
		t.Fatalf("expected urgency 3, got %d", a.UrgencyLevel)
	}
}

func TestAssessEmergencyHighestTierWins(t *testing.T) {
	a := AssessEmergency("water stain turned into flooding overnight")
	if a.UrgencyLevel != 5 {
		t.Fatalf("expected urgency 5, got %d", a.UrgencyLevel)
	}
	if len(a.MatchedKeywords) < 2 {
		t.Fatalf("expected keywords from both tiers, got %v", a.MatchedKeywords)
	}
}

func TestAssessEmergencyNoMatch(t *testing.T) {
	a := AssessEmergency("what colors do your shingles come in?")
	if a.IsEmergency || a.UrgencyLevel != 0 || len(a.MatchedKeywords) != 0 {
		t.Fatalf("expected empty assessment, got %+v", a)
	}
}
