package claim

import (
	"testing"

	"github.com/ppiankov/nightfall/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		text      string
		wantRole  model.Role
		wantRule  string
		wantClaim bool
	}{
		{"first person", "I am the seer.", model.RoleSeer, "strong:seer", true},
		{"contraction with emphasis", "I'm actually the knight!", model.RoleKnight, "strong:knight", true},
		{"curly apostrophe", "I’m the medium, listen to me.", model.RoleMedium, "strong:medium", true},
		{"co marker", "Seer CO. Briar came out human.", model.RoleSeer, "strong:seer", true},
		{"coming out", "Coming out as the protector now.", model.RoleKnight, "strong:knight", true},
		{"loose pronoun first", "My role is knight, believe it.", model.RoleKnight, "loose:knight", true},
		{"loose noun first", "The medium here is me.", model.RoleMedium, "loose:medium", true},
		{"policy boundary", "I trust the seer completely.", model.RoleSeer, "loose:seer", true},
		{"villager", "I'm just a villager.", model.RoleVillager, "loose:villager", true},
		{"negated", "I am not the seer.", "", "", false},
		{"isn't", "Briar isn't the knight, I am.", "", "", false},
		{"question", "Am I the seer?", "", "", false},
		{"fullwidth question", "Who is the seer？", "", "", false},
		{"no role noun", "Let's vote for Corin today.", "", "", false},
		{"noun without first person", "The seer should speak up.", "", "", false},
		{"empty", "   ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := c.Classify(tt.text)
			if ok != tt.wantClaim {
				t.Fatalf("Classify(%q) claim=%v, want %v", tt.text, ok, tt.wantClaim)
			}
			if !ok {
				return
			}
			if m.Role != tt.wantRole {
				t.Errorf("Classify(%q) role=%s, want %s", tt.text, m.Role, tt.wantRole)
			}
			if m.Heuristic != tt.wantRule {
				t.Errorf("Classify(%q) heuristic=%s, want %s", tt.text, m.Heuristic, tt.wantRule)
			}
		})
	}
}

func TestClassifier_StrongBeatsLooseAcrossRoles(t *testing.T) {
	c := NewClassifier()

	// "seer" appears first, but only the knight phrase is a strong match
	m, ok := c.Classify("Forget what my seer friend said, I'm the knight.")
	if !ok {
		t.Fatal("expected a claim")
	}
	if m.Role != model.RoleKnight {
		t.Errorf("expected knight, got %s (%s)", m.Role, m.Heuristic)
	}
}
