package models

import "fmt"

type Language string

const (
	LanguageThai    Language = "th"
	LanguageEnglish Language = "en"
)

func (l Language) Valid() bool {
	return l == LanguageThai || l == LanguageEnglish
}

type CompetencyCategory string

const (
	CategoryFunctional CompetencyCategory = "Functional"
	CategorySpecific   CompetencyCategory = "Specific"
	CategoryManagerial CompetencyCategory = "Managerial"
)

// Competency is an immutable catalog entry.
type Competency struct {
	ID       string             `json:"id"`
	Category CompetencyCategory `json:"category"`
	NameEN   string             `json:"nameEn"`
	NameTH   string             `json:"nameTh"`
}

// Name returns the display name for lang.
func (c Competency) Name(lang Language) string {
	if lang == LanguageThai {
		return c.NameTH
	}
	return c.NameEN
}

var competencyCatalog = []Competency{
	{ID: "f1", Category: CategoryFunctional, NameEN: "Service Mind", NameTH: "จิตสำนึกการให้บริการ (Service Mind)"},
	{ID: "f2", Category: CategoryFunctional, NameEN: "Problem Solving & Decision Making", NameTH: "การแก้ไขปัญหาและการตัดสินใจ (Problem Solving)"},
	{ID: "f3", Category: CategoryFunctional, NameEN: "Effective Communication", NameTH: "การสื่อสารอย่างมีประสิทธิภาพ"},
	{ID: "f4", Category: CategoryFunctional, NameEN: "Teamwork & Collaboration", NameTH: "การทำงานเป็นทีมและความร่วมมือ"},
	{ID: "s1", Category: CategorySpecific, NameEN: "Clinical Risk Management", NameTH: "การจัดการความเสี่ยงทางคลินิก"},
	{ID: "s2", Category: CategorySpecific, NameEN: "Critical Care Nursing", NameTH: "การพยาบาลผู้ป่วยวิกฤต"},
	{ID: "m1", Category: CategoryManagerial, NameEN: "Leadership", NameTH: "ความเป็นผู้นำ (Leadership)"},
	{ID: "m2", Category: CategoryManagerial, NameEN: "Change Management", NameTH: "ศักยภาพเพื่อนำการเปลี่ยนแปลง (Change Management)"},
	{ID: "m3", Category: CategoryManagerial, NameEN: "People Management", NameTH: "การบริหารทรัพยากรบุคคล"},
	{ID: "m4", Category: CategoryManagerial, NameEN: "Strategic Thinking", NameTH: "การคิดเชิงกลยุทธ์"},
	{ID: "m5", Category: CategoryManagerial, NameEN: "Quality Management", NameTH: "การบริหารคุณภาพงานบริการ"},
}

// Catalog returns a copy of the full competency catalog in catalog order.
func Catalog() []Competency {
	out := make([]Competency, len(competencyCatalog))
	copy(out, competencyCatalog)
	return out
}

// CatalogByCategory returns the catalog entries of one category in catalog order.
func CatalogByCategory(category CompetencyCategory) []Competency {
	var out []Competency
	for _, c := range competencyCatalog {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// FindCompetency looks up a catalog entry by id.
func FindCompetency(id string) (Competency, bool) {
	for _, c := range competencyCatalog {
		if c.ID == id {
			return c, true
		}
	}
	return Competency{}, false
}

// LevelData is the expected level and standard score for an experience band.
type LevelData struct {
	Level         int     `json:"level"`
	StandardScore float64 `json:"standardScore"`
}

// GetLevelData maps years of experience to a level and standard score.
func GetLevelData(experienceYears int) LevelData {
	switch {
	case experienceYears <= 1:
		return LevelData{Level: 1, StandardScore: 1}
	case experienceYears <= 2:
		return LevelData{Level: 2, StandardScore: 1}
	case experienceYears <= 3:
		return LevelData{Level: 3, StandardScore: 2}
	case experienceYears <= 5:
		return LevelData{Level: 4, StandardScore: 3}
	default:
		return LevelData{Level: 5, StandardScore: 4}
	}
}

// DifficultyTier is the scenario difficulty derived from experience.
type DifficultyTier struct {
	Label          string
	QuestionLength string
}

// TierForExperience returns the scenario difficulty tier for experienceYears.
func TierForExperience(experienceYears int) DifficultyTier {
	switch {
	case experienceYears <= 2:
		return DifficultyTier{Label: "Beginner (Novice)", QuestionLength: "short and simple (2-3 sentences)"}
	case experienceYears <= 5:
		return DifficultyTier{Label: "Intermediate (Proficient)", QuestionLength: "moderate length (3-4 sentences)"}
	case experienceYears <= 10:
		return DifficultyTier{Label: "Advanced (Highly Competent)", QuestionLength: "detailed (4-5 sentences)"}
	default:
		return DifficultyTier{Label: "Expert (Senior Leader)", QuestionLength: "comprehensive and complex (5-6 sentences)"}
	}
}

func (t DifficultyTier) String() string {
	return fmt.Sprintf("%s, %s", t.Label, t.QuestionLength)
}
