package database

import "testing"

func TestPhoto_IsScored(t *testing.T) {
	p := Photo{}
	if p.IsScored() {
		t.Error("expected photo without score to be unscored")
	}

	score := 0.0
	p.Score = &score
	if !p.IsScored() {
		t.Error("expected photo with zero score to be scored")
	}
}

func TestPhoto_ScoreValue(t *testing.T) {
	p := Photo{}
	if p.ScoreValue() != -1 {
		t.Errorf("expected -1 for unscored photo, got %f", p.ScoreValue())
	}

	score := 7.5
	p.Score = &score
	if p.ScoreValue() != 7.5 {
		t.Errorf("expected 7.5, got %f", p.ScoreValue())
	}
}
