package processing

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rotorlabs/rotordiag/internal/dsp"
	"github.com/rotorlabs/rotordiag/internal/ingest"
	"github.com/rotorlabs/rotordiag/internal/repository"
	"github.com/rotorlabs/rotordiag/internal/storage"
	"github.com/rotorlabs/rotordiag/pkg/models"
)

type ProcessingService interface {
	ProcessDiagnosis(ctx context.Context, diagnosisID uuid.UUID, maxRows int) error
}

// Options are the diagnosis tunables, normally sourced from config.
type Options struct {
	PeakThreshold    float64
	MatchTolerance   float64
	RMSWindowSeconds int
	RMS              dsp.RMSThresholds
}

// DefaultOptions returns the standard tunables.
func DefaultOptions() Options {
	return Options{
		PeakThreshold:    dsp.DefaultPeakThreshold,
		MatchTolerance:   dsp.DefaultMatchTolerance,
		RMSWindowSeconds: dsp.RMSWindowSeconds,
		RMS:              dsp.DefaultRMSThresholds,
	}
}

type processingService struct {
	s3         storage.S3Service
	repository repository.DiagnosisRepository
	opts       Options
}

func NewProcessingService(s3Service storage.S3Service, repo repository.DiagnosisRepository, opts Options) ProcessingService {
	if opts.PeakThreshold <= 0 {
		opts.PeakThreshold = dsp.DefaultPeakThreshold
	}
	if opts.MatchTolerance <= 0 {
		opts.MatchTolerance = dsp.DefaultMatchTolerance
	}
	if opts.RMS == (dsp.RMSThresholds{}) {
		opts.RMS = dsp.DefaultRMSThresholds
	}
	return &processingService{
		s3:         s3Service,
		repository: repo,
		opts:       opts,
	}
}

// ProcessDiagnosis runs the full pipeline for one uploaded dataset: download,
// parse, sample-rate estimation, per-axis spectral diagnosis, RMS screening
// and result storage. Input problems mark the diagnosis failed and return
// nil; only infrastructure errors propagate.
func (s *processingService) ProcessDiagnosis(ctx context.Context, diagnosisID uuid.UUID, maxRows int) error {
	logger := log.With().Str("diagnosis_id", diagnosisID.String()).Logger()

	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, diagnosisID, "processing", 10); err != nil {
		return err
	}

	// Step 2: Get diagnosis details and machine parameters
	diagnosis, err := s.repository.GetByID(ctx, diagnosisID)
	if err != nil {
		return err
	}

	if diagnosis.DatasetS3Key == nil {
		s.repository.UpdateError(ctx, diagnosisID, "No dataset uploaded")
		return nil
	}

	machineInfo, err := s.repository.GetMachineInfo(ctx, diagnosisID)
	if err != nil {
		logger.Warn().Err(err).Msg("machine info missing")
		s.repository.UpdateError(ctx, diagnosisID, "Machine info is required before processing")
		return nil // Don't return error, status is updated to failed
	}

	// Step 3: Download from S3
	if err := s.repository.UpdateStatus(ctx, diagnosisID, "processing", 20); err != nil {
		return err
	}

	data, err := s.s3.DownloadFile(ctx, *diagnosis.DatasetS3Key)
	if err != nil {
		logger.Error().Err(err).Str("key", *diagnosis.DatasetS3Key).Msg("dataset download failed")
		s.repository.UpdateError(ctx, diagnosisID, "Failed to download dataset")
		return nil // Don't return error, status is updated to failed
	}

	// Step 4: Parse the dataset
	var dataset *ingest.Dataset
	if strings.HasSuffix(*diagnosis.DatasetS3Key, ".csv") {
		dataset, err = ingest.ReadCSV(bytes.NewReader(data))
	} else {
		dataset, err = ingest.ReadXLSX(bytes.NewReader(data), "", machineInfo.AxialAxis)
	}
	if err != nil {
		s.repository.UpdateError(ctx, diagnosisID, fmt.Sprintf("Failed to parse dataset: %v", err))
		return nil
	}

	if maxRows > 0 {
		dataset.Tail(maxRows)
	}
	logger.Info().Int("rows", dataset.Len()).Msg("dataset parsed")

	// Step 5: Estimate the sampling rate and build the pipeline
	if err := s.repository.UpdateStatus(ctx, diagnosisID, "processing", 50); err != nil {
		return err
	}

	sampleRate, err := dsp.EstimateSampleRate(dataset.Timestamps)
	if err != nil {
		s.repository.UpdateError(ctx, diagnosisID, fmt.Sprintf("Failed to estimate sample rate: %v", err))
		return nil
	}

	pipeline, err := dsp.NewPipeline(dsp.MachineConfig{
		RPM:         machineInfo.RPM,
		AxialAxis:   machineInfo.AxialAxis,
		BearingInfo: machineInfo.BearingInfo,
	})
	if err != nil {
		s.repository.UpdateError(ctx, diagnosisID, fmt.Sprintf("Invalid machine info: %v", err))
		return nil
	}
	pipeline.SetPeakThreshold(s.opts.PeakThreshold)
	pipeline.SetMatchTolerance(s.opts.MatchTolerance)

	var warnings []string
	if w := pipeline.Warning(); w != "" {
		warnings = append(warnings, w)
	}

	// Step 6: Diagnose every axis
	signals := []dsp.AxisSignal{
		{Axis: "x", Samples: dataset.X},
		{Axis: "y", Samples: dataset.Y},
		{Axis: "z", Samples: dataset.Z},
	}

	reports, err := pipeline.DiagnoseAll(signals, sampleRate)
	if err != nil {
		s.repository.UpdateError(ctx, diagnosisID, fmt.Sprintf("Diagnosis failed on all axes: %v", err))
		return nil
	}

	// Step 7: Rolling-RMS severity screen
	if err := s.repository.UpdateStatus(ctx, diagnosisID, "processing", 80); err != nil {
		return err
	}

	axial, radialA, radialB := splitByRole(dataset, machineInfo.AxialAxis)
	rmsEvents := dsp.ScreenRMS(dataset.Timestamps, radialA, radialB, axial, sampleRate, s.opts.RMSWindowSeconds, s.opts.RMS)

	// Step 8: Store results
	if err := s.repository.UpdateStatus(ctx, diagnosisID, "processing", 90); err != nil {
		return err
	}

	results := &models.DiagnosisResults{
		ID:          uuid.New().String(),
		DiagnosisID: diagnosis.ID,
		SampleRate:  sampleRate,
		AxisReports: toModelReports(reports),
		RMSEvents:   toModelEvents(rmsEvents),
		Warnings:    warnings,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repository.StoreResults(ctx, results); err != nil {
		return err
	}

	// Step 9: Mark complete
	if err := s.repository.UpdateStatus(ctx, diagnosisID, "completed", 100); err != nil {
		return err
	}

	logger.Info().
		Float64("sample_rate", sampleRate).
		Int("rms_events", len(rmsEvents)).
		Msg("diagnosis completed")

	return nil
}

// splitByRole returns the axial series and the two radial series in x, y, z
// order. The axial axis has already been validated by the pipeline.
func splitByRole(dataset *ingest.Dataset, axialAxis string) (axial, radialA, radialB []float64) {
	switch axialAxis {
	case "x":
		return dataset.X, dataset.Y, dataset.Z
	case "y":
		return dataset.Y, dataset.X, dataset.Z
	default:
		return dataset.Z, dataset.X, dataset.Y
	}
}

func toModelReports(reports []dsp.AxisReport) []models.AxisReport {
	out := make([]models.AxisReport, 0, len(reports))
	for _, r := range reports {
		report := models.AxisReport{
			Axis: r.Axis,
			Role: r.Role,
		}
		if r.Err != nil {
			report.Error = r.Err.Error()
			out = append(out, report)
			continue
		}
		report.Spectrum = toSpectrumPoints(r.Spectrum)
		for _, p := range r.Peaks {
			report.Peaks = append(report.Peaks, models.SpectrumPoint{Frequency: p.Frequency, Amplitude: p.Amplitude})
		}
		for _, m := range r.Matches {
			report.Matches = append(report.Matches, models.FaultMatch{Label: m.Label, Frequency: m.Frequency})
		}
		out = append(out, report)
	}
	return out
}

func toSpectrumPoints(spec dsp.Spectrum) []models.SpectrumPoint {
	points := make([]models.SpectrumPoint, len(spec.Frequencies))
	for i := range spec.Frequencies {
		points[i] = models.SpectrumPoint{Frequency: spec.Frequencies[i], Amplitude: spec.Amplitudes[i]}
	}
	return points
}

func toModelEvents(events []dsp.RMSEvent) []models.RMSEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]models.RMSEvent, len(events))
	for i, e := range events {
		out[i] = models.RMSEvent{Time: e.Time, Issues: e.Issues}
	}
	return out
}
