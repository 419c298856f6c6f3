package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

// mockRepository is an in-memory Repository. Writes are counted so tests can
// assert that a rejected request touched nothing.
type mockRepository struct {
	mu sync.Mutex

	users     map[string]*models.User
	sessions  map[string]*models.AssessmentSession
	results   []*models.AssessmentResult
	responses []models.QuestionResponse
	plans     []*models.IDPPlan
	progress  map[string]*models.ProgressTracking

	writes int
	reads  int
	failOn map[string]error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[string]*models.User),
		sessions: make(map[string]*models.AssessmentSession),
		progress: make(map[string]*models.ProgressTracking),
		failOn:   make(map[string]error),
	}
}

func (m *mockRepository) User() repositories.UserRepository         { return &mockUserRepo{m} }
func (m *mockRepository) Session() repositories.SessionRepository   { return &mockSessionRepo{m} }
func (m *mockRepository) Result() repositories.ResultRepository     { return &mockResultRepo{m} }
func (m *mockRepository) Progress() repositories.ProgressRepository { return &mockProgressRepo{m} }
func (m *mockRepository) Roster() repositories.RosterRepository     { return &mockRosterRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func (m *mockRepository) fail(op string) error {
	return m.failOn[op]
}

func (m *mockRepository) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *mockRepository) addUser(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users[u.ID] = u
	return u
}

func (m *mockRepository) addSession(s *models.AssessmentSession) *models.AssessmentSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = models.SessionInProgress
	}
	m.sessions[s.ID] = s
	return s
}

// ===== users =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("user.create"); err != nil {
		return err
	}
	for _, u := range r.m.users {
		if u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.m.users[user.ID] = user
	r.m.writes++
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.reads++
	if u, ok := r.m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, tx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *mockUserRepo) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.LastLogin = &at
	r.m.writes++
	return nil
}

func (r *mockUserRepo) UpdateProfile(ctx context.Context, tx *gorm.DB, id string, p repositories.ProfileUpdate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ExperienceYears, u.Level, u.StandardScore = p.ExperienceYears, p.Level, p.StandardScore
	r.m.writes++
	return nil
}

// ===== sessions =====

type mockSessionRepo struct{ m *mockRepository }

func (r *mockSessionRepo) Create(ctx context.Context, tx *gorm.DB, s *models.AssessmentSession) error {
	if err := r.m.fail("session.create"); err != nil {
		return err
	}
	r.m.addSession(s)
	r.m.mu.Lock()
	r.m.writes++
	r.m.mu.Unlock()
	return nil
}

func (r *mockSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockSessionRepo) IncrementCompleted(ctx context.Context, tx *gorm.DB, id, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[id]
	if !ok || s.UserID != userID {
		return repositories.ErrNotFound
	}
	if s.CompletedCount < s.TotalCompetencies {
		s.CompletedCount++
	}
	r.m.writes++
	return nil
}

func (r *mockSessionRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id, userID string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[id]
	if !ok || s.UserID != userID {
		return repositories.ErrNotFound
	}
	s.Status = models.SessionCompleted
	s.CompletedAt = &at
	r.m.writes++
	return nil
}

func (r *mockSessionRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*models.AssessmentSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.AssessmentSession
	for _, s := range r.m.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ===== results =====

type mockResultRepo struct{ m *mockRepository }

func (r *mockResultRepo) Create(ctx context.Context, tx *gorm.DB, result *models.AssessmentResult) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("result.create"); err != nil {
		return err
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	r.m.results = append(r.m.results, result)
	r.m.writes++
	return nil
}

func (r *mockResultRepo) CreateResponses(ctx context.Context, tx *gorm.DB, responses []models.QuestionResponse) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.responses = append(r.m.responses, responses...)
	r.m.writes++
	return nil
}

func (r *mockResultRepo) CreateIDPPlan(ctx context.Context, tx *gorm.DB, plan *models.IDPPlan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.plans = append(r.m.plans, plan)
	r.m.writes++
	return nil
}

func (r *mockResultRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID, userID string) ([]*models.AssessmentResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.AssessmentResult
	for _, res := range r.m.results {
		if res.SessionID == sessionID && res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, nil
}

// ===== progress =====

type mockProgressRepo struct{ m *mockRepository }

func progressKey(userID, competencyID string) string { return userID + "|" + competencyID }

func (r *mockProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, competencyID string, score float64, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("progress.upsert"); err != nil {
		return err
	}
	key := progressKey(userID, competencyID)
	if p, ok := r.m.progress[key]; ok {
		p.LatestScore = score
		p.AssessmentCount++
		p.ImprovementTrend = score - p.FirstScore
		p.LastAssessedAt = at
	} else {
		r.m.progress[key] = &models.ProgressTracking{
			ID: uuid.NewString(), UserID: userID, CompetencyID: competencyID,
			FirstScore: score, LatestScore: score, AssessmentCount: 1, LastAssessedAt: at,
		}
	}
	r.m.writes++
	return nil
}

func (r *mockProgressRepo) Get(ctx context.Context, tx *gorm.DB, userID, competencyID string) (*models.ProgressTracking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.progress[progressKey(userID, competencyID)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockProgressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.ProgressTracking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.reads++
	var out []*models.ProgressTracking
	for _, p := range r.m.progress {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAssessedAt.After(out[j].LastAssessedAt) })
	return out, nil
}

// ===== roster =====

type mockRosterRepo struct{ m *mockRepository }

func (r *mockRosterRepo) ListUsers(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, u := range r.m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *mockRosterRepo) SessionStats(ctx context.Context, tx *gorm.DB) ([]repositories.SessionStatRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[[2]string]int64{}
	for _, s := range r.m.sessions {
		counts[[2]string{s.UserID, string(s.Status)}]++
	}
	var out []repositories.SessionStatRow
	for k, c := range counts {
		out = append(out, repositories.SessionStatRow{UserID: k[0], Status: models.SessionStatus(k[1]), Count: c})
	}
	return out, nil
}

func (r *mockRosterRepo) ResultStats(ctx context.Context, tx *gorm.DB) ([]repositories.ResultStatRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rows := map[string]*repositories.ResultStatRow{}
	for _, res := range r.m.results {
		row, ok := rows[res.UserID]
		if !ok {
			row = &repositories.ResultStatRow{UserID: res.UserID}
			rows[res.UserID] = row
		}
		row.AverageScore = (row.AverageScore*float64(row.Count) + res.Score) / float64(row.Count+1)
		row.AverageGap = (row.AverageGap*float64(row.Count) + res.Gap) / float64(row.Count+1)
		row.Count++
		created := res.CreatedAt
		if row.LastResultAt == nil || created.After(*row.LastResultAt) {
			row.LastResultAt = &created
		}
	}
	var out []repositories.ResultStatRow
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}
