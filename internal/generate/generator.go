package generate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"capsgen/internal/caps"
	"capsgen/internal/ledger"
	"capsgen/internal/logging"
	"capsgen/internal/manifest"
	"capsgen/internal/nifti"
	"capsgen/internal/provenance"
	"capsgen/internal/transform"
)

// Params configures one generation run. Zero values fall back to sensible
// defaults where noted.
type Params struct {
	// Source is the CAPS directory, or a cohort TSV when MultiCohort is set.
	Source    string
	OutputDir string
	// Workers bounds per-image parallelism; <= 0 means one worker.
	Workers         int
	Preprocessing   string
	ParticipantsTSV string
	MultiCohort     bool
	UncroppedImage  bool
	Tracer          string
	SUVRRegion      string
	GammaLow        float64
	GammaHigh       float64
	// Seed makes voxel output reproducible; 0 draws a seed from the clock.
	Seed              int64
	OverwriteExisting bool
	ToolVersion       string
}

// Result summarizes a completed run.
type Result struct {
	RunID      string
	OutputDir  string
	Rows       []manifest.Row
	ImageCount int
	Elapsed    time.Duration
}

// Generator runs synthetic contrast dataset generation.
type Generator struct {
	logger *slog.Logger
	store  *ledger.Store
}

// New constructs a generator. The ledger store may be nil, in which case no
// run history is recorded.
func New(logger *slog.Logger, store *ledger.Store) *Generator {
	return &Generator{
		logger: logging.NewComponentLogger(logger, "generator"),
		store:  store,
	}
}

type visitOutcome struct {
	row    manifest.Row
	record ledger.ImageRecord
}

// Run executes the full pipeline for the supplied parameters.
func (g *Generator) Run(ctx context.Context, params Params) (*Result, error) {
	started := time.Now()

	sampler, err := transform.NewGammaSampler(params.GammaLow, params.GammaHigh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	cohorts, err := caps.ParseCohorts(params.Source, params.MultiCohort)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	fileType, err := caps.FileTypeFor(params.Preprocessing, params.UncroppedImage, params.Tracer, params.SUVRRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	visits, err := manifest.LoadVisits(params.ParticipantsTSV, cohorts, params.MultiCohort)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := os.MkdirAll(filepath.Join(params.OutputDir, "subjects"), 0o755); err != nil {
		return nil, fmt.Errorf("create output tree: %w", err)
	}

	lock := flock.New(filepath.Join(params.OutputDir, ".capsgen.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: another run is writing to %s", ErrLocked, params.OutputDir)
	}
	defer lock.Unlock()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, g.logger)

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := params.Workers
	if workers <= 0 {
		workers = 1
	}

	logger.Info("starting generation run",
		logging.String("source", params.Source),
		logging.String(logging.FieldOutput, params.OutputDir),
		logging.Int("visits", len(visits)),
		logging.Int("workers", workers),
		logging.String("preprocessing", params.Preprocessing),
	)

	if g.store != nil {
		err := g.store.BeginRun(ctx, ledger.Run{
			ID:            runID,
			Source:        params.Source,
			OutputDir:     params.OutputDir,
			Preprocessing: params.Preprocessing,
			StartedAt:     started.UTC(),
			ImageCount:    len(visits),
		})
		if err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}

	outcomes := make([]visitOutcome, len(visits))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, visit := range visits {
		i, visit := i, visit
		// Deriving the RNG from the visit index keeps output independent
		// of worker scheduling.
		rng := rand.New(rand.NewSource(seed + int64(i)))
		group.Go(func() error {
			outcome, err := g.processVisit(groupCtx, params, cohorts, fileType, visit, sampler, rng)
			outcome.record.RunID = runID
			if g.store != nil {
				if recordErr := g.store.RecordImage(ctx, outcome.record); recordErr != nil && err == nil {
					err = recordErr
				}
			}
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("generation run failed", logging.Error(err))
		if g.store != nil {
			_ = g.store.FinishRun(ctx, runID, ledger.RunStatusFailed, len(visits), err.Error())
		}
		return nil, err
	}

	rows := make([]manifest.Row, len(outcomes))
	for i, outcome := range outcomes {
		rows[i] = outcome.row
	}

	if err := manifest.WriteDataTSV(params.OutputDir, rows); err != nil {
		return nil, err
	}
	if err := manifest.WriteMissingModalities(params.OutputDir, rows); err != nil {
		return nil, err
	}

	version := params.ToolVersion
	if version == "" {
		version = "dev"
	}
	record := provenance.Record{
		RunID:      runID,
		Tool:       "capsgen",
		Version:    version,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		Parameters: map[string]any{
			"source":                params.Source,
			"output_dir":            params.OutputDir,
			"n_proc":                workers,
			"preprocessing":         params.Preprocessing,
			"participants_tsv":      params.ParticipantsTSV,
			"multi_cohort":          params.MultiCohort,
			"use_uncropped_image":   params.UncroppedImage,
			"tracer":                params.Tracer,
			"suvr_reference_region": params.SUVRRegion,
			"gamma":                 []float64{params.GammaLow, params.GammaHigh},
			"seed":                  seed,
		},
		ImageCount: len(rows),
		Outputs: map[string]string{
			"data_tsv":     filepath.Join(params.OutputDir, "data.tsv"),
			"missing_mods": filepath.Join(params.OutputDir, "missing_mods"),
		},
	}
	if err := provenance.Write(params.OutputDir, record); err != nil {
		return nil, err
	}

	if g.store != nil {
		if err := g.store.FinishRun(ctx, runID, ledger.RunStatusCompleted, len(rows), ""); err != nil {
			return nil, fmt.Errorf("record run completion: %w", err)
		}
	}

	elapsed := time.Since(started)
	logger.Info("generation run completed",
		logging.Int("images", len(rows)),
		logging.Duration("elapsed", elapsed),
	)

	return &Result{
		RunID:      runID,
		OutputDir:  params.OutputDir,
		Rows:       rows,
		ImageCount: len(rows),
		Elapsed:    elapsed,
	}, nil
}

func (g *Generator) processVisit(
	ctx context.Context,
	params Params,
	cohorts map[string]string,
	fileType caps.FileType,
	visit caps.Visit,
	sampler *transform.GammaSampler,
	rng *rand.Rand,
) (visitOutcome, error) {
	outcome := visitOutcome{
		record: ledger.ImageRecord{
			ParticipantID: visit.Participant,
			SessionID:     visit.Session,
			Status:        ledger.ImageStatusFailed,
		},
	}
	if err := ctx.Err(); err != nil {
		outcome.record.ErrorMessage = err.Error()
		return outcome, err
	}

	ctx = logging.WithVisit(ctx, visit.Participant, visit.Session)
	logger := logging.WithContext(ctx, g.logger)

	sourcePath, err := caps.FindImage(cohorts[visit.Cohort], visit.Participant, visit.Session, fileType)
	if err != nil {
		outcome.record.ErrorMessage = err.Error()
		return outcome, wrapVisit(ErrNotFound, visit, "locate source image", err)
	}
	outcome.record.SourcePath = sourcePath

	img, err := nifti.ReadFile(sourcePath)
	if err != nil {
		outcome.record.ErrorMessage = err.Error()
		return outcome, wrapVisit(ErrImageCodec, visit, "decode source image", err)
	}

	gamma := sampler.Sample(rng)
	transform.ApplyGamma(img.Data, gamma)
	outcome.record.Gamma = gamma

	contrastID := contrastParticipantID(visit.Participant)
	fileName, err := outputFileName(contrastID, visit.Session, filepath.Base(sourcePath))
	if err != nil {
		outcome.record.ErrorMessage = err.Error()
		return outcome, wrapVisit(ErrValidation, visit, "derive output filename", err)
	}

	outDir := filepath.Join(params.OutputDir, "subjects", contrastID, visit.Session, params.Preprocessing)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		outcome.record.ErrorMessage = err.Error()
		return outcome, wrapVisit(nil, visit, "create output directory", err)
	}

	outPath := filepath.Join(outDir, fileName)
	if !params.OverwriteExisting {
		if _, err := os.Stat(outPath); err == nil {
			existsErr := fmt.Errorf("output %s already exists", outPath)
			outcome.record.ErrorMessage = existsErr.Error()
			return outcome, wrapVisit(ErrValidation, visit, "write output image", existsErr)
		}
	}
	if err := nifti.WriteFile(outPath, img); err != nil {
		outcome.record.ErrorMessage = err.Error()
		return outcome, wrapVisit(ErrImageCodec, visit, "write output image", err)
	}

	logger.Debug("image corrupted with contrast artefact",
		logging.Float64(logging.FieldGamma, gamma),
		logging.String(logging.FieldOutput, outPath),
	)

	outcome.record.OutputPath = outPath
	outcome.record.Status = ledger.ImageStatusCompleted
	outcome.record.ErrorMessage = ""
	outcome.row = manifest.Row{
		ParticipantID: contrastID,
		SessionID:     visit.Session,
		Diagnosis:     diagnosisLabel,
	}
	return outcome, nil
}
