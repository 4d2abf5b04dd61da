package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/fieldsurvey/internal/service"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		surveyID    int64
		out         string
		generatedAt string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a survey report to an HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			if surveyID <= 0 {
				return errors.New("--survey is required")
			}
			opts := service.RenderOptions{GeneratedAt: time.Now().UTC()}
			if generatedAt != "" {
				t, err := time.Parse(time.RFC3339, generatedAt)
				if err != nil {
					return fmt.Errorf("invalid --generated-at: %w", err)
				}
				opts.GeneratedAt = t
			}

			svc, err := a.reportService()
			if err != nil {
				return err
			}
			markup, filename, err := svc.RenderReport(cmd.Context(), surveyID, opts)
			if err != nil {
				return err
			}

			if out == "" {
				out = filename
			}
			if out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), markup)
				return err
			}
			if err := os.WriteFile(out, []byte(markup), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			a.logger.Info("report written", "survey_id", surveyID, "path", out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&surveyID, "survey", 0, "survey id")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default derived from the site name)`)
	cmd.Flags().StringVar(&generatedAt, "generated-at", "", "footer timestamp in RFC 3339 (default now)")
	return cmd
}
