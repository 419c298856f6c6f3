package flow

import (
	"math/rand/v2"

	"github.com/medihack/competency-service/internal/models"
)

// SetShape is how many competencies of each category an assessment draws.
type SetShape struct {
	Functional int
	Specific   int
	Managerial int
}

// DefaultSetShape draws two of each category.
var DefaultSetShape = SetShape{Functional: 2, Specific: 2, Managerial: 2}

// Total is the number of competencies in a set of this shape.
func (s SetShape) Total() int {
	return s.Functional + s.Specific + s.Managerial
}

// SelectCompetencies draws an assessment set: functional and managerial
// competencies at random without replacement, specific ones in catalog order.
func SelectCompetencies(rng *rand.Rand, shape SetShape) []models.Competency {
	out := make([]models.Competency, 0, shape.Total())
	out = append(out, pickRandom(rng, models.CatalogByCategory(models.CategoryFunctional), shape.Functional)...)
	out = append(out, firstN(models.CatalogByCategory(models.CategorySpecific), shape.Specific)...)
	out = append(out, pickRandom(rng, models.CatalogByCategory(models.CategoryManagerial), shape.Managerial)...)
	return out
}

func pickRandom(rng *rand.Rand, items []models.Competency, n int) []models.Competency {
	shuffled := make([]models.Competency, len(items))
	copy(shuffled, items)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return firstN(shuffled, n)
}

func firstN(items []models.Competency, n int) []models.Competency {
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
