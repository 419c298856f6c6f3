package flow

import (
	"encoding/base64"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medihack/competency-service/internal/models"
)

func TestSelectCompetencies(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		set := SelectCompetencies(rand.New(rand.NewPCG(seed, seed+1)), DefaultSetShape)
		require.Len(t, set, 6)

		seen := make(map[string]bool)
		for _, c := range set {
			assert.False(t, seen[c.ID], "duplicate %s", c.ID)
			seen[c.ID] = true
		}

		assert.Equal(t, models.CategoryFunctional, set[0].Category)
		assert.Equal(t, models.CategoryFunctional, set[1].Category)
		assert.Equal(t, "s1", set[2].ID)
		assert.Equal(t, "s2", set[3].ID)
		assert.Equal(t, models.CategoryManagerial, set[4].Category)
		assert.Equal(t, models.CategoryManagerial, set[5].Category)
	}
}

func TestSelectCompetenciesVaries(t *testing.T) {
	ids := make(map[string]bool)
	for seed := uint64(0); seed < 50; seed++ {
		set := SelectCompetencies(rand.New(rand.NewPCG(seed, 7)), DefaultSetShape)
		ids[set[0].ID] = true
	}
	assert.Greater(t, len(ids), 1)
}

func TestSelectCompetenciesShapeLargerThanCategory(t *testing.T) {
	set := SelectCompetencies(rand.New(rand.NewPCG(1, 1)), SetShape{Functional: 10, Specific: 10, Managerial: 0})
	assert.Len(t, set, 6)
	assert.Equal(t, 20, SetShape{Functional: 10, Specific: 10}.Total())
}

func TestDecodePCM16(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x00, 0x80, 0x00, 0x00, 0x00, 0x40})

	samples, err := DecodePCM16(payload)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0, 0.5}, samples)

	samples, err = DecodePCM16("")
	require.NoError(t, err)
	assert.Empty(t, samples)

	_, err = DecodePCM16(base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03}))
	assert.Error(t, err)

	_, err = DecodePCM16("not base64!")
	assert.Error(t, err)
}

func TestResultLine(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		standard float64
		lang     models.Language
		want     string
	}{
		{"english above", 3.5, 2, models.LanguageEnglish, "Score 3.5 out of 4.0, exceeded standard"},
		{"english below", 1, 2, models.LanguageEnglish, "Score 1.0 out of 4.0, below standard"},
		{"english equal", 2, 2, models.LanguageEnglish, "Score 2.0 out of 4.0, met standard"},
		{"thai above", 3, 1, models.LanguageThai, "คะแนน 3.0 จาก 4.0 สูงกว่ามาตรฐาน"},
		{"thai below", 1.5, 3, models.LanguageThai, "คะแนน 1.5 จาก 4.0 ต่ำกว่ามาตรฐาน"},
		{"thai equal", 4, 4, models.LanguageThai, "คะแนน 4.0 จาก 4.0 เท่ากับมาตรฐาน"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResultLine(tt.score, tt.standard, tt.lang))
		})
	}
}
