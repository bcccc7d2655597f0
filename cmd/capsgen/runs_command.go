package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"capsgen/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded generation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, runsOutput(runs))
			}
			printRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit runs as JSON")

	cmd.AddCommand(newRunsShowCommand(ctx))

	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show per-image outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %q not found", args[0])
			}
			images, err := store.RunImages(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, runDetailOutput(run, images))
			}
			printRunDetail(cmd, run, images)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit run details as JSON")

	return cmd
}

type runJSON struct {
	ID            string  `json:"id"`
	Source        string  `json:"source"`
	OutputDir     string  `json:"output_dir"`
	Preprocessing string  `json:"preprocessing"`
	Status        string  `json:"status"`
	StartedAt     string  `json:"started_at"`
	FinishedAt    *string `json:"finished_at,omitempty"`
	ImageCount    int     `json:"image_count"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

type imageJSON struct {
	ParticipantID string  `json:"participant_id"`
	SessionID     string  `json:"session_id"`
	SourcePath    string  `json:"source_path"`
	OutputPath    string  `json:"output_path,omitempty"`
	Gamma         float64 `json:"gamma,omitempty"`
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

type runDetailJSON struct {
	Run    runJSON     `json:"run"`
	Images []imageJSON `json:"images"`
}

func runsOutput(runs []*ledger.Run) []runJSON {
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runToJSON(run))
	}
	return out
}

func runToJSON(run *ledger.Run) runJSON {
	item := runJSON{
		ID:            run.ID,
		Source:        run.Source,
		OutputDir:     run.OutputDir,
		Preprocessing: run.Preprocessing,
		Status:        string(run.Status),
		StartedAt:     run.StartedAt.Format(time.RFC3339),
		ImageCount:    run.ImageCount,
		ErrorMessage:  run.ErrorMessage,
	}
	if run.FinishedAt != nil {
		finished := run.FinishedAt.Format(time.RFC3339)
		item.FinishedAt = &finished
	}
	return item
}

func runDetailOutput(run *ledger.Run, images []*ledger.ImageRecord) runDetailJSON {
	detail := runDetailJSON{Run: runToJSON(run), Images: make([]imageJSON, 0, len(images))}
	for _, image := range images {
		detail.Images = append(detail.Images, imageJSON{
			ParticipantID: image.ParticipantID,
			SessionID:     image.SessionID,
			SourcePath:    image.SourcePath,
			OutputPath:    image.OutputPath,
			Gamma:         image.Gamma,
			Status:        string(image.Status),
			ErrorMessage:  image.ErrorMessage,
		})
	}
	return detail
}

func printRuns(cmd *cobra.Command, runs []*ledger.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return
	}

	if !isTerminal(out) {
		for _, run := range runs {
			fmt.Fprintf(out, "%s\t%s\t%s\t%d\t%s\n",
				run.ID, run.Status, run.Preprocessing, run.ImageCount,
				run.StartedAt.Format(time.RFC3339))
		}
		return
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			string(run.Status),
			run.Preprocessing,
			strconv.Itoa(run.ImageCount),
			run.StartedAt.Format("2006-01-02 15:04:05"),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"run", "status", "preprocessing", "images", "started"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func printRunDetail(cmd *cobra.Command, run *ledger.Run, images []*ledger.ImageRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.Status)
	fmt.Fprintf(out, "  source:        %s\n", run.Source)
	fmt.Fprintf(out, "  output:        %s\n", run.OutputDir)
	fmt.Fprintf(out, "  preprocessing: %s\n", run.Preprocessing)
	fmt.Fprintf(out, "  started:       %s\n", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "  finished:      %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "  error:         %s\n", run.ErrorMessage)
	}

	if len(images) == 0 {
		return
	}

	if !isTerminal(out) {
		for _, image := range images {
			fmt.Fprintf(out, "%s\t%s\t%s\t%.4f\n",
				image.ParticipantID, image.SessionID, image.Status, image.Gamma)
		}
		return
	}

	rows := make([][]string, 0, len(images))
	for _, image := range images {
		gamma := ""
		if image.Status == ledger.ImageStatusCompleted {
			gamma = strconv.FormatFloat(image.Gamma, 'f', 4, 64)
		}
		rows = append(rows, []string{
			image.ParticipantID,
			image.SessionID,
			string(image.Status),
			gamma,
			image.ErrorMessage,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"participant", "session", "status", "gamma", "error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}
