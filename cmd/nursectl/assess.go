package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medihack/competency-service/internal/flow"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/services"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a self-assessment in the terminal",
	Long: "Log in as a nurse and answer one scenario per competency. Answers are typed; " +
		"an empty line re-shows the question, :dashboard leaves the current topic and :quit logs out.",
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringP("username", "u", "", "Nurse username")
	assessCmd.Flags().StringP("password", "p", "", "Password (optional for first login)")
	assessCmd.Flags().Int("experience", -1, "Years of experience; updates the stored profile when set")
	assessCmd.Flags().String("lang", "th", "Language: th or en")
	assessCmd.Flags().Int("questions", flow.DefaultQuestionsPerCompetency, "Scenarios per competency")
	_ = assessCmd.MarkFlagRequired("username")
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	experience, _ := cmd.Flags().GetInt("experience")
	lang, _ := cmd.Flags().GetString("lang")
	questions, _ := cmd.Flags().GetInt("questions")

	language := models.Language(lang)
	if !language.Valid() {
		return fmt.Errorf("unsupported language %q", lang)
	}

	ctrl := flow.NewController(newBackend(cmd),
		flow.WithLogger(newLogger(cmd)),
		flow.WithLanguage(language),
		flow.WithQuestionsPerCompetency(questions),
	)
	defer ctrl.Close()

	req := services.LoginRequest{Username: username, Password: password}
	if experience >= 0 {
		req.ExperienceYears = &experience
	}
	if err := ctrl.Login(ctx, req); err != nil {
		if ctrl.Snapshot().View == flow.ViewLogin {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "! %v\n", err)
	}

	s := &session{ctrl: ctrl, in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	return s.run(ctx)
}

type session struct {
	ctrl *flow.Controller
	in   *bufio.Scanner
	out  io.Writer
}

func (s *session) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			s.ctrl.Logout()
			return nil
		}

		state := s.ctrl.Snapshot()
		var err error
		switch state.View {
		case flow.ViewLogin:
			return nil
		case flow.ViewLoading:
			err = s.retryLoad(ctx)
		case flow.ViewQuestioning:
			err = s.question(ctx, state)
		case flow.ViewResult:
			err = s.result(ctx, state)
		case flow.ViewDashboard:
			err = s.dashboard(ctx, state)
		case flow.ViewReport:
			err = s.report(ctx, state)
		default:
			return fmt.Errorf("unexpected view %s", state.View)
		}

		if errors.Is(err, io.EOF) {
			s.ctrl.Logout()
			return nil
		}
		if err != nil && !errors.Is(err, flow.ErrStale) {
			fmt.Fprintf(s.out, "! %v\n", err)
		}
	}
}

func (s *session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// command handles the inputs accepted in every view.
func (s *session) command(line string) bool {
	switch line {
	case ":quit":
		s.ctrl.Logout()
		return true
	case ":dashboard":
		if err := s.ctrl.ShowDashboard(); err != nil {
			fmt.Fprintf(s.out, "! %v\n", err)
		}
		return true
	}
	return false
}

func (s *session) retryLoad(ctx context.Context) error {
	line, err := s.readLine("Loading failed. Press enter to retry: ")
	if err != nil {
		return err
	}
	if s.command(line) {
		return nil
	}
	return s.ctrl.Reload(ctx)
}

func (s *session) question(ctx context.Context, state flow.State) error {
	comp, _ := state.Current()
	scenario, _ := state.CurrentScenario()

	fmt.Fprintf(s.out, "\n[%d/%d] %s (question %d/%d)\n%s\n",
		state.TopicIndex+1, len(state.Competencies), comp.Name(state.Language),
		state.QuestionIndex+1, len(state.Scenarios), scenario.Text)
	if scenario.Context != "" {
		fmt.Fprintf(s.out, "(%s)\n", scenario.Context)
	}

	line, err := s.readLine("> ")
	if err != nil {
		return err
	}
	if line == "" || s.command(line) {
		return nil
	}
	if err := s.ctrl.SetDraft(line); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Evaluating...")
	return s.ctrl.Submit(ctx)
}

func (s *session) result(ctx context.Context, state flow.State) error {
	eval := state.Evaluation
	fmt.Fprintf(s.out, "\n%s\n%s\n", flow.ResultLine(eval.Score, state.User.StandardScore, state.Language), eval.Feedback)
	printIDP(s.out, eval.IDP)

	line, err := s.readLine("Press enter to continue: ")
	if err != nil {
		return err
	}
	if s.command(line) {
		return nil
	}
	return s.ctrl.Next(ctx)
}

func (s *session) dashboard(ctx context.Context, state flow.State) error {
	fmt.Fprintf(s.out, "\nDashboard for %s (standard %.1f)\n", state.User.Username, state.User.StandardScore)
	for _, comp := range state.Competencies {
		if r, ok := state.Results[comp.ID]; ok {
			fmt.Fprintf(s.out, "  %-4s %-45s %.1f (gap %+.1f)\n", comp.ID, comp.Name(state.Language), r.Score, r.Gap)
		} else {
			fmt.Fprintf(s.out, "  %-4s %-45s -\n", comp.ID, comp.Name(state.Language))
		}
	}

	line, err := s.readLine("report | retake <id> | :quit > ")
	if err != nil {
		return err
	}
	if s.command(line) {
		return nil
	}

	fields := strings.Fields(line)
	switch {
	case len(fields) == 1 && fields[0] == "report":
		return s.ctrl.ShowReport()
	case len(fields) == 2 && fields[0] == "retake":
		return s.ctrl.Retake(ctx, fields[1])
	case len(fields) == 0:
		return nil
	default:
		return fmt.Errorf("unknown command %q", line)
	}
}

func (s *session) report(ctx context.Context, state flow.State) error {
	fmt.Fprintln(s.out, "\nIndividual development report")

	ids := make([]string, 0, len(state.Results))
	for id := range state.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r := state.Results[id]
		fmt.Fprintf(s.out, "\n%s: %.1f (gap %+.1f)\n%s\n", id, r.Score, r.Gap, r.Feedback)
		printIDP(s.out, r.IDP)
	}

	summary, err := s.ctrl.ConsolidatedSummary(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "! summary unavailable: %v\n", err)
	} else {
		fmt.Fprintf(s.out, "\n%s\n", summary)
	}

	if _, err := s.readLine("Press enter to return to the dashboard: "); err != nil {
		return err
	}
	return s.ctrl.CloseReport()
}

func printIDP(w io.Writer, idp models.IDP) {
	for _, c := range idp.TrainingCourses {
		fmt.Fprintf(w, "  - course: %s\n", c)
	}
	for _, c := range idp.NonTrainingCourses {
		fmt.Fprintf(w, "  - activity: %s\n", c)
	}
	if idp.Recommendation != "" {
		fmt.Fprintf(w, "  %s\n", idp.Recommendation)
	}
}
