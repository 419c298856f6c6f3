package models

import (
	"math"
	"testing"
)

func TestGetLevelData(t *testing.T) {
	tests := []struct {
		years int
		want  LevelData
	}{
		{0, LevelData{1, 1}},
		{1, LevelData{1, 1}},
		{2, LevelData{2, 1}},
		{3, LevelData{3, 2}},
		{4, LevelData{4, 3}},
		{5, LevelData{4, 3}},
		{6, LevelData{5, 4}},
		{30, LevelData{5, 4}},
	}
	for _, tt := range tests {
		if got := GetLevelData(tt.years); got != tt.want {
			t.Errorf("GetLevelData(%d) = %+v, want %+v", tt.years, got, tt.want)
		}
	}
}

func TestTierForExperience(t *testing.T) {
	tests := []struct {
		years int
		label string
	}{
		{0, "Beginner (Novice)"},
		{2, "Beginner (Novice)"},
		{3, "Intermediate (Proficient)"},
		{5, "Intermediate (Proficient)"},
		{10, "Advanced (Highly Competent)"},
		{11, "Expert (Senior Leader)"},
	}
	for _, tt := range tests {
		if got := TierForExperience(tt.years).Label; got != tt.label {
			t.Errorf("TierForExperience(%d) = %q, want %q", tt.years, got, tt.label)
		}
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{2.84, 2.8},
		{2.86, 2.9},
		{4, 4},
		{7.5, 4},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGap(t *testing.T) {
	if got := Gap(2.8, 2); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Gap(2.8, 2) = %v, want 0.8", got)
	}
	if got := Gap(1.2, 3); math.Abs(got+1.8) > 1e-9 {
		t.Errorf("Gap(1.2, 3) = %v, want -1.8", got)
	}
}

func TestCatalog(t *testing.T) {
	if n := len(Catalog()); n != 11 {
		t.Fatalf("expected 11 competencies, got %d", n)
	}
	if n := len(CatalogByCategory(CategoryFunctional)); n != 4 {
		t.Errorf("expected 4 functional, got %d", n)
	}
	if n := len(CatalogByCategory(CategorySpecific)); n != 2 {
		t.Errorf("expected 2 specific, got %d", n)
	}
	if n := len(CatalogByCategory(CategoryManagerial)); n != 5 {
		t.Errorf("expected 5 managerial, got %d", n)
	}

	c, ok := FindCompetency("m1")
	if !ok || c.Name(LanguageEnglish) != "Leadership" {
		t.Errorf("FindCompetency(m1) = %+v, %v", c, ok)
	}
	if _, ok := FindCompetency("x9"); ok {
		t.Error("expected unknown id to be missing")
	}
}

func TestResponseAt(t *testing.T) {
	responses := []string{"first", ""}
	if got := ResponseAt(responses, 0); got != "first" {
		t.Errorf("got %q", got)
	}
	if got := ResponseAt(responses, 1); got != NoResponse {
		t.Errorf("blank response: got %q", got)
	}
	if got := ResponseAt(responses, 5); got != NoResponse {
		t.Errorf("missing response: got %q", got)
	}
}
