package gateway

import (
	"fmt"
	"strings"

	"github.com/medihack/competency-service/internal/models"
)

var fallbackScenarioBank = map[models.Language][]string{
	models.LanguageThai: {
		"ผู้ป่วยมีอาการแย่ลงหลังได้รับยาใหม่ คุณจะประเมินและจัดการอย่างไร?",
		"ระหว่างเวรมีผู้ป่วยหลายรายต้องการการดูแลพร้อมกัน คุณจะจัดลำดับความสำคัญอย่างไร?",
		"ญาติผู้ป่วยกังวลและตั้งคำถามต่อแผนการรักษา คุณจะสื่อสารอย่างไร?",
		"เกิดความคลาดเคลื่อนในการสื่อสารระหว่างทีม คุณจะป้องกันและแก้ไขอย่างไร?",
		"ผู้ป่วยปฏิเสธการรักษาบางอย่าง คุณจะดูแลอย่างไรโดยเคารพสิทธิผู้ป่วย?",
	},
	models.LanguageEnglish: {
		"A patient deteriorates shortly after receiving a new medication. How would you assess and manage the situation?",
		"During a busy shift, multiple patients need urgent attention at the same time. How would you prioritize care?",
		"A family member is anxious and challenges the treatment plan. How would you communicate and respond?",
		"A communication gap occurs during handoff between team members. How would you prevent and address this?",
		"A patient refuses part of the recommended treatment. How would you provide safe care while respecting autonomy?",
	},
}

// fallbackScenarios builds count canned scenarios, cycling the template bank.
func fallbackScenarios(competencyName string, lang models.Language, count int) []models.Scenario {
	isThai := lang == models.LanguageThai
	bank := fallbackScenarioBank[models.LanguageEnglish]
	topic, note := "Topic", "System fallback question when AI quota is exceeded"
	if isThai {
		bank = fallbackScenarioBank[models.LanguageThai]
		topic, note = "หัวข้อ", "คำถามสำรองจากระบบเมื่อโควตา AI เต็ม"
	}

	out := make([]models.Scenario, count)
	for i := range out {
		out[i] = models.Scenario{
			ID:      fmt.Sprintf("fallback-%d", i+1),
			Text:    fmt.Sprintf("%s: %s. %s", topic, competencyName, bank[i%len(bank)]),
			Context: note,
		}
	}
	return out
}

// countWords sums whitespace-separated words over all non-empty responses.
func countWords(responses []string) int {
	total := 0
	for _, r := range responses {
		total += len(strings.Fields(r))
	}
	return total
}

// wordCountScore maps a total word count to a score by fixed breakpoints.
func wordCountScore(words int) float64 {
	switch {
	case words >= 220:
		return 3.8
	case words >= 150:
		return 3.4
	case words >= 90:
		return 2.8
	case words >= 40:
		return 2.0
	default:
		return 1.2
	}
}

// fallbackEvaluation scores responses by length and assembles a templated IDP.
func fallbackEvaluation(responses []string, standardScore float64, competencyName string, lang models.Language) models.Evaluation {
	score := models.ClampScore(wordCountScore(countWords(responses)))
	positive := score > standardScore

	var feedback, recommendation string
	var training, nonTraining []string

	if lang == models.LanguageThai {
		feedback = fmt.Sprintf("ระบบประเมินแบบสำรองถูกใช้งานสำหรับหัวข้อ %s เนื่องจากโควตา AI เต็ม ผลลัพธ์ประเมินจากความครบถ้วนและความชัดเจนของคำตอบ กรุณาทบทวนคำตอบให้มีเหตุผลเชิงคลินิกชัดเจนยิ่งขึ้นในรอบถัดไป", competencyName)
		training = []string{
			fmt.Sprintf("เวิร์กช็อป: การตัดสินใจเชิงคลินิกในหัวข้อ %s", competencyName),
			"หลักสูตร: การสื่อสารทางการพยาบาลและการประเมินอาการอย่างเป็นระบบ",
		}
		nonTraining = []string{
			"โค้ชชิ่งรายสัปดาห์กับหัวหน้าหอผู้ป่วย",
			"ทบทวนเคสย้อนหลังและรับ feedback จากพี่เลี้ยง",
		}
		recommendation = "ผลลัพธ์ยังไม่ถึงมาตรฐาน: เน้นการอบรมแบบเป็นทางการร่วมกับการโค้ชชิ่งต่อเนื่อง"
		if positive {
			recommendation = "ผลลัพธ์สูงกว่ามาตรฐาน: เน้นโค้ชชิ่งและมอบหมายบทบาทผู้นำในสถานการณ์จริง"
		}
	} else {
		feedback = fmt.Sprintf("Fallback evaluation was used for %s because AI quota is currently exhausted. The score is estimated from response completeness and clarity. Add clearer clinical reasoning and prioritization in your next attempt.", competencyName)
		training = []string{
			fmt.Sprintf("Workshop: Clinical decision-making for %s", competencyName),
			"Course: Structured nursing assessment and communication",
		}
		nonTraining = []string{
			"Weekly coaching with charge nurse",
			"Case reflection with mentor feedback",
		}
		recommendation = "Score is below standard: prioritize formal training with ongoing coaching support."
		if positive {
			recommendation = "Score is above standard: prioritize coaching and stretch leadership assignments."
		}
	}

	if positive {
		training = training[:1]
	} else {
		nonTraining = nonTraining[:1]
	}

	return models.Evaluation{
		Score:    score,
		Feedback: feedback,
		IDP: models.IDP{
			TrainingCourses:    training,
			NonTrainingCourses: nonTraining,
			Recommendation:     recommendation,
		},
		Source: models.SourceFallback,
	}
}

// fallbackSummary is a templated summary built from the mean score.
func fallbackSummary(experienceYears int, results []SummaryItem, lang models.Language) string {
	count := len(results)
	avg := 0.0
	if count > 0 {
		total := 0.0
		for _, r := range results {
			total += r.Score
		}
		avg = total / float64(count)
	}

	if lang == models.LanguageThai {
		return fmt.Sprintf("สรุปแบบสำรอง: จาก %d หัวข้อ คะแนนเฉลี่ยอยู่ที่ %.1f จาก 4.0 สำหรับประสบการณ์ %d ปี แนะนำให้พัฒนาอย่างต่อเนื่องโดยเน้นหัวข้อที่มีคะแนนต่ำและติดตามผลทุกเดือน", count, avg, experienceYears)
	}
	return fmt.Sprintf("Fallback summary: Across %d competencies, the average score is %.1f out of 4.0 for a nurse with %d years of experience. Continue targeted development on lower-scoring competencies and review progress monthly.", count, avg, experienceYears)
}
