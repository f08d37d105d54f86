package gate

import "testing"

func TestDecide_CapForcesFinalize(t *testing.T) {
	// Above the cap the score must not matter.
	for score := 0; score <= 10; score++ {
		for count := MaxRevisions + 1; count <= MaxRevisions+5; count++ {
			if got := Decide(score, count); got != Finalize {
				t.Errorf("Decide(%d, %d) = %v, want Finalize", score, count, got)
			}
		}
	}
}

func TestDecide_ScoreThresholdWithinBudget(t *testing.T) {
	for score := 0; score <= 10; score++ {
		for count := 0; count <= MaxRevisions; count++ {
			got := Decide(score, count)
			want := Revise
			if score >= PassScore {
				want = Finalize
			}
			if got != want {
				t.Errorf("Decide(%d, %d) = %v, want %v", score, count, got, want)
			}
		}
	}
}

func TestDecide_Boundary(t *testing.T) {
	tests := []struct {
		name  string
		score int
		count int
		want  Decision
	}{
		{"pass score first round", 7, 0, Finalize},
		{"just below pass score", 6, 0, Revise},
		{"zero score at cap", 0, MaxRevisions, Revise},
		{"zero score past cap", 0, MaxRevisions + 1, Finalize},
		{"perfect score past cap", 10, MaxRevisions + 1, Finalize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.score, tt.count); got != tt.want {
				t.Errorf("Decide(%d, %d) = %v, want %v", tt.score, tt.count, got, tt.want)
			}
		})
	}
}

func TestDecision_String(t *testing.T) {
	if Revise.String() != "revise" {
		t.Errorf("Revise.String() = %s", Revise.String())
	}
	if Finalize.String() != "finalize" {
		t.Errorf("Finalize.String() = %s", Finalize.String())
	}
}
