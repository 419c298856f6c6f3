package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medihack/competency-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func quotaErr() error {
	return &QuotaError{Err: errors.New("429 Too Many Requests")}
}

func TestGenerateScenarios_Success(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: []byte(`{"scenarios":[{"id":"a","text":"A patient falls.","context":"ward"}]}`),
	})
	g := New(mock, nil, testLogger(), 0)

	got, err := g.GenerateScenarios(context.Background(), ScenarioRequest{
		CompetencyName:  "Leadership",
		Language:        models.LanguageEnglish,
		ExperienceYears: 7,
		Count:           1,
	})
	require.NoError(t, err)
	assert.Equal(t, []models.Scenario{{ID: "a", Text: "A patient falls.", Context: "ward"}}, got)

	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].Prompt, "Advanced (Highly Competent)")
	assert.Contains(t, mock.Calls[0].Prompt, "Language: English")
	assert.Equal(t, scenarioSchema, mock.Calls[0].Schema)
}

func TestGenerateScenarios_QuotaFallback(t *testing.T) {
	g := New(NewMockProvider(MockResponse{Err: quotaErr()}), nil, testLogger(), 0)

	got, err := g.GenerateScenarios(context.Background(), ScenarioRequest{
		CompetencyName: "Leadership",
		Language:       models.LanguageEnglish,
		Count:          5,
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, sc := range got {
		assert.Equal(t, fmt.Sprintf("fallback-%d", i+1), sc.ID)
		assert.True(t, strings.HasPrefix(sc.Text, "Topic: Leadership. "))
		assert.Equal(t, "System fallback question when AI quota is exceeded", sc.Context)
	}
}

func TestFallbackScenarios_CyclesBank(t *testing.T) {
	got := fallbackScenarios("การบริหารคุณภาพงานบริการ", models.LanguageThai, 12)
	require.Len(t, got, 12)

	assert.Equal(t, "fallback-12", got[11].ID)
	assert.Equal(t, got[0].Text, got[5].Text)
	assert.Equal(t, got[1].Text, got[11].Text)
	assert.True(t, strings.HasPrefix(got[0].Text, "หัวข้อ: การบริหารคุณภาพงานบริการ. "))
	assert.Equal(t, "คำถามสำรองจากระบบเมื่อโควตา AI เต็ม", got[3].Context)
}

func TestGenerateScenarios_UpstreamError(t *testing.T) {
	g := New(NewMockProvider(MockResponse{Err: errors.New("connection reset")}), nil, testLogger(), 0)

	_, err := g.GenerateScenarios(context.Background(), ScenarioRequest{CompetencyName: "x", Count: 1})
	var upstream *UpstreamGenerationError
	require.ErrorAs(t, err, &upstream)
}

func TestWordCountScore_Breakpoints(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{0, 1.2},
		{39, 1.2},
		{40, 2.0},
		{89, 2.0},
		{90, 2.8},
		{149, 2.8},
		{150, 3.4},
		{219, 3.4},
		{220, 3.8},
		{1000, 3.8},
	}
	prev := 0.0
	for _, tt := range tests {
		got := wordCountScore(countWords([]string{words(tt.words)}))
		assert.Equal(t, tt.want, got, "words=%d", tt.words)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCountWords_SkipsBlankResponses(t *testing.T) {
	assert.Equal(t, 5, countWords([]string{"  one two\tthree ", "", "   ", "four\nfive"}))
}

func TestEvaluateResponses_QuotaFallbackAboveStandard(t *testing.T) {
	g := New(NewMockProvider(MockResponse{Err: quotaErr()}), nil, testLogger(), 0)

	eval, err := g.EvaluateResponses(context.Background(), EvaluationRequest{
		Scenarios:      []models.Scenario{{ID: "1", Text: "A patient deteriorates."}},
		Responses:      []string{words(95)},
		CompetencyName: "Service Mind",
		StandardScore:  2,
		Language:       models.LanguageEnglish,
	})
	require.NoError(t, err)

	assert.Equal(t, 2.8, eval.Score)
	assert.InDelta(t, 0.8, models.Gap(eval.Score, 2), 1e-9)
	assert.Equal(t, models.SourceFallback, eval.Source)
	assert.Equal(t, []string{"Workshop: Clinical decision-making for Service Mind"}, eval.IDP.TrainingCourses)
	assert.Len(t, eval.IDP.NonTrainingCourses, 2)
	assert.Equal(t, "Score is above standard: prioritize coaching and stretch leadership assignments.", eval.IDP.Recommendation)
	assert.Contains(t, eval.Feedback, "Fallback evaluation was used for Service Mind")
}

func TestFallbackEvaluation_BelowStandardThai(t *testing.T) {
	eval := fallbackEvaluation([]string{words(10)}, 2, "ความเป็นผู้นำ", models.LanguageThai)

	assert.Equal(t, 1.2, eval.Score)
	assert.Len(t, eval.IDP.TrainingCourses, 2)
	assert.Equal(t, []string{"โค้ชชิ่งรายสัปดาห์กับหัวหน้าหอผู้ป่วย"}, eval.IDP.NonTrainingCourses)
	assert.Equal(t, "ผลลัพธ์ยังไม่ถึงมาตรฐาน: เน้นการอบรมแบบเป็นทางการร่วมกับการโค้ชชิ่งต่อเนื่อง", eval.IDP.Recommendation)
}

func TestFallbackEvaluation_EqualScoreIsNotPositive(t *testing.T) {
	eval := fallbackEvaluation([]string{words(40)}, 2, "Teamwork", models.LanguageEnglish)

	assert.Equal(t, 2.0, eval.Score)
	assert.Len(t, eval.IDP.TrainingCourses, 2)
	assert.Len(t, eval.IDP.NonTrainingCourses, 1)
}

func TestEvaluateResponses_ClampsModelScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"above range", `{"score":5.7,"feedback":"ok","idp":{"trainingCourses":[],"nonTrainingCourses":["Mentoring"],"recommendation":"r"}}`, 4.0},
		{"below range", `{"score":-1,"feedback":"ok","idp":{"trainingCourses":["Course"],"nonTrainingCourses":[],"recommendation":"r"}}`, 0.0},
		{"rounded", `{"score":3.14,"feedback":"ok","idp":{"trainingCourses":[],"nonTrainingCourses":[],"recommendation":"r"}}`, 3.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(NewMockProvider(MockResponse{Content: []byte(tt.content)}), nil, testLogger(), 0)

			eval, err := g.EvaluateResponses(context.Background(), EvaluationRequest{
				Scenarios:     []models.Scenario{{ID: "1", Text: "Q"}},
				StandardScore: 2,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, eval.Score)
			assert.Equal(t, models.SourceAI, eval.Source)
		})
	}
}

func TestEvaluateResponses_RejectsNonNumericScore(t *testing.T) {
	g := New(NewMockProvider(MockResponse{
		Content: []byte(`{"score":"high","feedback":"ok","idp":{"trainingCourses":[],"nonTrainingCourses":[],"recommendation":"r"}}`),
	}), nil, testLogger(), 0)

	_, err := g.EvaluateResponses(context.Background(), EvaluationRequest{
		Scenarios: []models.Scenario{{ID: "1", Text: "Q"}},
	})
	var failed *EvaluationFailedError
	require.ErrorAs(t, err, &failed)
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestEvaluateResponses_UpstreamErrorHasNoFallback(t *testing.T) {
	g := New(NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}), nil, testLogger(), 0)

	eval, err := g.EvaluateResponses(context.Background(), EvaluationRequest{
		Scenarios: []models.Scenario{{ID: "1", Text: "Q"}},
		Responses: []string{words(300)},
	})
	assert.Nil(t, eval)
	var failed *EvaluationFailedError
	assert.ErrorAs(t, err, &failed)
}

func TestEvaluationPrompt_MissingResponses(t *testing.T) {
	prompt := evaluationPrompt(EvaluationRequest{
		Scenarios:      []models.Scenario{{Text: "First"}, {Text: "Second"}},
		Responses:      []string{"Answer one"},
		CompetencyName: "Leadership",
		StandardScore:  3,
		Language:       models.LanguageThai,
	})

	assert.Contains(t, prompt, `Q1: First`)
	assert.Contains(t, prompt, `A1: "Answer one"`)
	assert.Contains(t, prompt, `A2: "No response"`)
	assert.Contains(t, prompt, "If score > 3 (Positive Gap)")
	assert.Contains(t, prompt, "Output everything in Thai.")
}

func TestGenerateVoiceAudio(t *testing.T) {
	t.Run("encodes audio and picks voice", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Audio: []byte{0x01, 0x02, 0x03, 0x04}})
		g := New(mock, mock, testLogger(), 0)

		got, err := g.GenerateVoiceAudio(context.Background(), "สวัสดี", models.LanguageThai)
		require.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03, 0x04}), got)
		assert.Equal(t, []string{"Kore"}, mock.Voices)
	})

	t.Run("quota yields empty audio", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Err: errors.New("RESOURCE_EXHAUSTED: daily limit")})
		g := New(mock, mock, testLogger(), 0)

		got, err := g.GenerateVoiceAudio(context.Background(), "Hello", models.LanguageEnglish)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, []string{"Zephyr"}, mock.Voices)
	})

	t.Run("other failure", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Err: errors.New("bad gateway")})
		g := New(mock, mock, testLogger(), 0)

		_, err := g.GenerateVoiceAudio(context.Background(), "Hello", models.LanguageEnglish)
		var voiceErr *VoiceGenerationError
		assert.ErrorAs(t, err, &voiceErr)
	})

	t.Run("no synthesizer", func(t *testing.T) {
		g := New(NewMockProvider(), nil, testLogger(), 0)

		got, err := g.GenerateVoiceAudio(context.Background(), "Hello", models.LanguageEnglish)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGenerateConsolidatedSummary(t *testing.T) {
	results := []SummaryItem{
		{CompetencyID: "f1", Score: 2, Gap: 0},
		{CompetencyID: "m1", Score: 3, Gap: 1},
	}

	t.Run("model text", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Content: []byte(`"Strong clinical foundation."`)})
		g := New(mock, nil, testLogger(), 0)

		got, err := g.GenerateConsolidatedSummary(context.Background(), SummaryRequest{
			ExperienceYears: 4, Results: results, Language: models.LanguageEnglish,
		})
		require.NoError(t, err)
		assert.Equal(t, "Strong clinical foundation.", got)
		assert.Contains(t, mock.Calls[0].Prompt, "Topic: m1, Score: 3, Gap: 1")
		assert.Contains(t, mock.Calls[0].System, "Nursing Director")
		assert.Equal(t, summaryMaxTokens, mock.Calls[0].MaxTokens)
		assert.Nil(t, mock.Calls[0].Schema)
	})

	t.Run("quota fallback", func(t *testing.T) {
		g := New(NewMockProvider(MockResponse{Err: quotaErr()}), nil, testLogger(), 0)

		got, err := g.GenerateConsolidatedSummary(context.Background(), SummaryRequest{
			ExperienceYears: 4, Results: results, Language: models.LanguageEnglish,
		})
		require.NoError(t, err)
		assert.Equal(t, "Fallback summary: Across 2 competencies, the average score is 2.5 out of 4.0 for a nurse with 4 years of experience. Continue targeted development on lower-scoring competencies and review progress monthly.", got)
	})

	t.Run("thai fallback with no results", func(t *testing.T) {
		got := fallbackSummary(0, nil, models.LanguageThai)
		assert.True(t, strings.HasPrefix(got, "สรุปแบบสำรอง: จาก 0 หัวข้อ คะแนนเฉลี่ยอยู่ที่ 0.0 จาก 4.0"))
	})

	t.Run("other failure", func(t *testing.T) {
		g := New(NewMockProvider(MockResponse{Err: errors.New("boom")}), nil, testLogger(), 0)

		_, err := g.GenerateConsolidatedSummary(context.Background(), SummaryRequest{Results: results})
		var upstream *UpstreamGenerationError
		assert.ErrorAs(t, err, &upstream)
	})
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return "http error" }
func (e statusErr) StatusCode() int { return e.code }

func TestIsQuotaExceeded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrQuotaExceeded, true},
		{"wrapped quota error", &UpstreamGenerationError{Err: quotaErr()}, true},
		{"status 429", statusErr{code: 429}, true},
		{"status 500", statusErr{code: 500}, false},
		{"resource exhausted message", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"quota message", errors.New("you exceeded your current quota"), true},
		{"other", errors.New("deadline exceeded"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuotaExceeded(tt.err))
		})
	}
}

func TestValidateResponse(t *testing.T) {
	assert.NoError(t, validateResponse(nil, []byte(`anything`)))
	assert.NoError(t, validateResponse(scenarioSchema, []byte(`{"scenarios":[]}`)))

	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, validateResponse(scenarioSchema, []byte(`{"scenarios":[{"id":"1"}]}`)), &invalid)
	assert.ErrorAs(t, validateResponse(scenarioSchema, []byte(`not json`)), &invalid)
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(evaluationSchema.Definition)

	assert.EqualValues(t, "OBJECT", schema.Type)
	assert.EqualValues(t, "NUMBER", schema.Properties["score"].Type)
	assert.EqualValues(t, "ARRAY", schema.Properties["idp"].Properties["trainingCourses"].Type)
	assert.EqualValues(t, "STRING", schema.Properties["idp"].Properties["trainingCourses"].Items.Type)
	assert.ElementsMatch(t, []string{"score", "feedback", "idp"}, schema.Required)
}
