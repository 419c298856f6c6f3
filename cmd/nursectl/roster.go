package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/medihack/competency-service/internal/flow"
	"github.com/medihack/competency-service/internal/services"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Admin views of the nurse roster",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print per-nurse statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := adminBackend(cmd)
		if err != nil {
			return err
		}

		roster, err := backend.Roster(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Nurses: %d  active: %d\n\n", roster.Summary.TotalNurses, roster.Summary.ActiveNurses)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tEXPERIENCE\tLEVEL\tSESSIONS\tCOMPLETION %\tAVG SCORE\tAVG GAP")
		for _, n := range roster.Nurses {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%.2f\t%.2f\n",
				n.Username, n.ExperienceYears, n.Level, n.TotalSessions, n.CompletionRate, n.AverageScore, n.AverageGap)
		}
		return w.Flush()
	},
}

var rosterExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the roster as an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := adminBackend(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = fmt.Sprintf("nurses-%s.xlsx", time.Now().Format("20060102"))
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := backend.ExportRoster(cmd.Context(), f); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rosterCmd.PersistentFlags().String("admin", "admin", "Admin username")
	rosterCmd.PersistentFlags().String("password", "", "Admin password (overrides NURSECTL_ADMIN_PASSWORD)")
	rosterExportCmd.Flags().StringP("output", "o", "", "Output file (default nurses-YYYYMMDD.xlsx)")

	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterExportCmd)
}

func adminBackend(cmd *cobra.Command) (*flow.HTTPBackend, error) {
	username, _ := cmd.Flags().GetString("admin")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("NURSECTL_ADMIN_PASSWORD")
	}

	backend := newBackend(cmd)
	if _, err := backend.AdminLogin(cmd.Context(), services.AdminLoginRequest{Username: username, Password: password}); err != nil {
		return nil, err
	}
	return backend, nil
}
