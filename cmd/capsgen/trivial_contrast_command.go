package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capsgen/internal/config"
	"capsgen/internal/generate"
	"capsgen/internal/ledger"
	"capsgen/internal/logging"
)

const summaryTimeRounding = 10 * time.Millisecond

func newTrivialContrastCommand(ctx *commandContext) *cobra.Command {
	var (
		nProc           int
		preprocessing   string
		participantsTSV string
		multiCohort     bool
		uncroppedImage  bool
		tracer          string
		suvrRegion      string
		gammaRange      []float64
		seed            int64
		overwrite       bool
		jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:   "trivial-contrast SOURCE OUTPUT_DIR",
		Short: "Generate a synthetic dataset with contrast artefacts",
		Long: strings.TrimSpace(`
Generate a synthetic CAPS dataset by applying a random gamma contrast
transform to every preprocessed image of the source dataset. SOURCE is a
CAPS directory, or a cohort TSV when --multi-cohort is set. Corrupted
images, the data.tsv manifest, the missing-modalities report, and the
commandline.json provenance record are written under OUTPUT_DIR.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			// Flags left untouched fall back to configured defaults.
			flags := cmd.Flags()
			if !flags.Changed("n-proc") {
				nProc = cfg.Generation.Workers
			}
			if !flags.Changed("preprocessing") {
				preprocessing = cfg.Generation.Preprocessing
			}
			if !flags.Changed("tracer") {
				tracer = cfg.Generation.Tracer
			}
			if !flags.Changed("suvr-reference-region") {
				suvrRegion = cfg.Generation.SUVRReferenceRegion
			}
			if !flags.Changed("gamma") {
				gammaRange = []float64{cfg.Generation.GammaLow, cfg.Generation.GammaHigh}
			}
			if !flags.Changed("overwrite") {
				overwrite = cfg.Generation.OverwriteExisting
			}
			if len(gammaRange) != 2 {
				return fmt.Errorf("--gamma expects exactly two values (low,high), got %d", len(gammaRange))
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			params := generate.Params{
				Source:            args[0],
				OutputDir:         args[1],
				Workers:           nProc,
				Preprocessing:     preprocessing,
				ParticipantsTSV:   participantsTSV,
				MultiCohort:       multiCohort,
				UncroppedImage:    uncroppedImage,
				Tracer:            tracer,
				SUVRRegion:        suvrRegion,
				GammaLow:          gammaRange[0],
				GammaHigh:         gammaRange[1],
				Seed:              seed,
				OverwriteExisting: overwrite,
				ToolVersion:       version,
			}

			result, err := generate.New(logger, store).Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, trivialContrastOutput(result))
			}
			printRunSummary(cmd, result)
			return nil
		},
	}

	defaults := config.Default().Generation

	cmd.Flags().IntVar(&nProc, "n-proc", defaults.Workers, "Number of images processed in parallel")
	cmd.Flags().StringVar(&preprocessing, "preprocessing", defaults.Preprocessing, "Preprocessing pipeline to read images from (t1-linear or pet-linear)")
	cmd.Flags().StringVar(&participantsTSV, "participants-tsv", "", "TSV restricting the run to listed participant/session pairs")
	cmd.Flags().BoolVar(&multiCohort, "multi-cohort", false, "Treat SOURCE as a cohort TSV with cohort and path columns")
	cmd.Flags().BoolVar(&uncroppedImage, "use-uncropped-image", false, "Use full MNI-space images instead of cropped ones")
	cmd.Flags().StringVar(&tracer, "tracer", defaults.Tracer, "PET tracer label (pet-linear only)")
	cmd.Flags().StringVar(&suvrRegion, "suvr-reference-region", defaults.SUVRReferenceRegion, "SUVR reference region (pet-linear only)")
	cmd.Flags().Float64SliceVar(&gammaRange, "gamma", []float64{defaults.GammaLow, defaults.GammaHigh}, "Log-gamma sampling range as low,high")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed; 0 draws one from the clock")
	cmd.Flags().BoolVar(&overwrite, "overwrite", defaults.OverwriteExisting, "Overwrite images already present in OUTPUT_DIR")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")

	return cmd
}

type runSummaryJSON struct {
	RunID      string  `json:"run_id"`
	OutputDir  string  `json:"output_dir"`
	ImageCount int     `json:"image_count"`
	ElapsedSec float64 `json:"elapsed_seconds"`
}

func trivialContrastOutput(result *generate.Result) runSummaryJSON {
	return runSummaryJSON{
		RunID:      result.RunID,
		OutputDir:  result.OutputDir,
		ImageCount: result.ImageCount,
		ElapsedSec: result.Elapsed.Seconds(),
	}
}

func printRunSummary(cmd *cobra.Command, result *generate.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %d synthetic images in %s\n", result.ImageCount, result.Elapsed.Round(summaryTimeRounding))

	if !isTerminal(out) {
		for _, row := range result.Rows {
			fmt.Fprintf(out, "%s\t%s\t%s\n", row.ParticipantID, row.SessionID, row.Diagnosis)
		}
		fmt.Fprintf(out, "run_id\t%s\n", result.RunID)
		return
	}

	rows := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, []string{row.ParticipantID, row.SessionID, row.Diagnosis})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"participant", "session", "diagnosis"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
}
