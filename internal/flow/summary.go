package flow

import (
	"fmt"

	"github.com/medihack/competency-service/internal/models"
)

// ResultLine is the short sentence spoken after an evaluation.
func ResultLine(score, standardScore float64, lang models.Language) string {
	gap := score - standardScore

	if lang == models.LanguageThai {
		relation := "เท่ากับ"
		switch {
		case gap > 0:
			relation = "สูงกว่า"
		case gap < 0:
			relation = "ต่ำกว่า"
		}
		return fmt.Sprintf("คะแนน %.1f จาก 4.0 %sมาตรฐาน", score, relation)
	}

	performance := "met"
	switch {
	case gap > 0:
		performance = "exceeded"
	case gap < 0:
		performance = "below"
	}
	return fmt.Sprintf("Score %.1f out of 4.0, %s standard", score, performance)
}
