package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

// ActiveWindow is how recently a nurse must have logged in to count as active.
const ActiveWindow = 30 * 24 * time.Hour

const rosterSheet = "Nurses"

type adminService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewAdminService(repo repositories.Repository, logger *slog.Logger) AdminService {
	return &adminService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetNurseRoster aggregates every user's sessions and results. Nothing is cached.
func (s *adminService) GetNurseRoster(ctx context.Context) (*RosterResponse, error) {
	users, err := s.repo.Roster().ListUsers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sessionRows, err := s.repo.Roster().SessionStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}

	resultRows, err := s.repo.Roster().ResultStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get result stats: %w", err)
	}

	return buildRoster(users, sessionRows, resultRows, s.now()), nil
}

type sessionCounts struct {
	total     int64
	completed int64
}

func buildRoster(users []*models.User, sessionRows []repositories.SessionStatRow, resultRows []repositories.ResultStatRow, now time.Time) *RosterResponse {
	sessions := make(map[string]sessionCounts, len(users))
	for _, row := range sessionRows {
		c := sessions[row.UserID]
		c.total += row.Count
		if row.Status == models.SessionCompleted {
			c.completed += row.Count
		}
		sessions[row.UserID] = c
	}

	results := make(map[string]repositories.ResultStatRow, len(resultRows))
	for _, row := range resultRows {
		results[row.UserID] = row
	}

	resp := &RosterResponse{Nurses: make([]NurseStats, 0, len(users))}
	for _, u := range users {
		c := sessions[u.ID]
		r := results[u.ID]

		var rate float64
		if c.total > 0 {
			rate = float64(c.completed) / float64(c.total) * 100
		}

		resp.Nurses = append(resp.Nurses, NurseStats{
			ID:                u.ID,
			Username:          u.Username,
			Email:             u.Email,
			Department:        u.Department,
			ExperienceYears:   u.ExperienceYears,
			Level:             u.Level,
			StandardScore:     u.StandardScore,
			CreatedAt:         u.CreatedAt,
			LastLogin:         u.LastLogin,
			TotalSessions:     c.total,
			CompletedSessions: c.completed,
			CompletionRate:    roundTo(rate, 1),
			AssessmentCount:   r.Count,
			AverageScore:      roundTo(r.AverageScore, 2),
			AverageGap:        roundTo(r.AverageGap, 2),
			LastAssessedAt:    r.LastResultAt,
		})

		if u.LastLogin != nil && now.Sub(*u.LastLogin) <= ActiveWindow {
			resp.Summary.ActiveNurses++
		}
	}
	resp.Summary.TotalNurses = len(resp.Nurses)

	return resp
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

var rosterColumns = []string{
	"Username", "Email", "Department", "Experience (years)", "Level", "Standard Score",
	"Total Sessions", "Completed Sessions", "Completion Rate (%)",
	"Assessments", "Average Score", "Average Gap", "Last Assessed", "Last Login",
}

// ExportNurseRoster writes the roster as an XLSX workbook.
func (s *adminService) ExportNurseRoster(ctx context.Context, w io.Writer) error {
	roster, err := s.GetNurseRoster(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(rosterColumns))
	for i, col := range rosterColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(rosterSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rosterColumns))
	if err := f.SetCellStyle(rosterSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, n := range roster.Nurses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			n.Username, deref(n.Email), deref(n.Department), n.ExperienceYears, n.Level, n.StandardScore,
			n.TotalSessions, n.CompletedSessions, n.CompletionRate,
			n.AssessmentCount, n.AverageScore, n.AverageGap, formatTime(n.LastAssessedAt), formatTime(n.LastLogin),
		}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(rosterSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	s.logger.Info("Roster exported", "nurses", len(roster.Nurses))
	return f.Write(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
