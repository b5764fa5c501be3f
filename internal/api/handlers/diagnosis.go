package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rotorlabs/rotordiag/internal/dsp"
	"github.com/rotorlabs/rotordiag/internal/processing"
	"github.com/rotorlabs/rotordiag/internal/repository"
	"github.com/rotorlabs/rotordiag/internal/storage"
	"github.com/rotorlabs/rotordiag/pkg/models"
)

// DiagnosisHandler handles diagnosis-related HTTP requests
type DiagnosisHandler struct {
	repo          repository.DiagnosisRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewDiagnosisHandler creates a new diagnosis handler
func NewDiagnosisHandler(repo repository.DiagnosisRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *DiagnosisHandler {
	return &DiagnosisHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateDiagnosis creates a new diagnosis and returns an upload URL
func (h *DiagnosisHandler) CreateDiagnosis(ctx context.Context, req *models.CreateDiagnosisRequest) (*models.CreateDiagnosisResponse, error) {
	log.Info().Int64("fileSize", req.Body.FileSize).Str("mimeType", req.Body.MimeType).Msg("Creating new diagnosis")

	diagnosisID := uuid.New()

	// Generate S3 key for the dataset
	datasetKey := fmt.Sprintf("datasets/%s.%s", diagnosisID, storage.ExtensionForMime(req.Body.MimeType))

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, datasetKey, req.Body.MimeType)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "invalid content type") {
			return nil, huma.Error400BadRequest("Dataset format not supported. Upload a CSV or Excel file.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	diagnosis := &models.Diagnosis{
		ID:           diagnosisID.String(),
		SessionID:    req.Body.SessionID,
		Status:       "pending",
		Progress:     0,
		DatasetS3Key: &datasetKey,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.repo.Create(ctx, diagnosis); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create diagnosis", err)
	}
	log.Info().Str("diagnosisID", diagnosis.ID).Str("datasetKey", datasetKey).Msg("Diagnosis record created")

	return &models.CreateDiagnosisResponse{
		Body: models.CreateDiagnosisResponseBody{
			ID:        diagnosis.ID,
			UploadURL: uploadURL,
			ExpiresIn: int((15 * time.Minute).Seconds()),
		},
	}, nil
}

// AddMachineInfo attaches machine parameters to a diagnosis
func (h *DiagnosisHandler) AddMachineInfo(ctx context.Context, req *models.AddMachineInfoRequest) (*models.AddMachineInfoResponse, error) {
	diagnosisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid diagnosis ID", err)
	}

	// Verify diagnosis exists
	_, err = h.repo.GetByID(ctx, diagnosisID)
	if err != nil {
		return nil, huma.Error404NotFound("Diagnosis not found", err)
	}

	// Reject bearing info the pipeline cannot parse, so the operator hears
	// about typos now instead of finding a warning in the results.
	if req.Body.BearingInfo != "" {
		if _, err := dsp.ParseBearingInfo(req.Body.BearingInfo); err != nil {
			return nil, huma.Error422UnprocessableEntity("Bearing info must be KEY=VALUE pairs with positive values in Hz", err)
		}
	}

	machineInfo := &models.MachineInfo{
		ID:          uuid.New().String(),
		DiagnosisID: diagnosisID.String(),
		RPM:         req.Body.RPM,
		AxialAxis:   req.Body.AxialAxis,
		BearingInfo: req.Body.BearingInfo,
		CreatedAt:   time.Now(),
	}

	if err := h.repo.CreateMachineInfo(ctx, machineInfo); err != nil {
		return nil, huma.Error500InternalServerError("Failed to save machine info", err)
	}

	return &models.AddMachineInfoResponse{
		Body: machineInfo,
	}, nil
}

// StartProcessing starts processing an uploaded dataset
func (h *DiagnosisHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	log.Info().Str("diagnosisID", req.ID).Int("maxRows", req.MaxRows).Msg("Processing start request received")
	diagnosisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid diagnosis ID", err)
	}

	// Verify diagnosis exists
	_, err = h.repo.GetByID(ctx, diagnosisID)
	if err != nil {
		return nil, huma.Error404NotFound("Diagnosis not found", err)
	}

	// Machine info must exist before processing can do anything useful
	if _, err := h.repo.GetMachineInfo(ctx, diagnosisID); err != nil {
		return nil, huma.Error409Conflict("Machine info must be added before processing",
			fmt.Errorf("no machine info for diagnosis %s", diagnosisID))
	}

	// Start processing in background (don't wait for completion)
	go func() {
		err := h.processingSvc.ProcessDiagnosis(context.Background(), diagnosisID, req.MaxRows)
		if err != nil {
			h.repo.UpdateError(context.Background(), diagnosisID, fmt.Sprintf("Processing failed: %v", err))
		}
	}()

	return &models.StartProcessingResponse{
		Body: struct {
			Message string `json:"message" doc:"Confirmation message"`
		}{
			Message: "Processing started successfully",
		},
	}, nil
}

// GetDiagnosisStatus returns the current status of a diagnosis
func (h *DiagnosisHandler) GetDiagnosisStatus(ctx context.Context, req *models.GetDiagnosisStatusRequest) (*models.GetDiagnosisStatusResponse, error) {
	diagnosisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid diagnosis ID", err)
	}

	diagnosis, err := h.repo.GetByID(ctx, diagnosisID)
	if err != nil {
		return nil, huma.Error404NotFound("Diagnosis not found", err)
	}

	message := h.generateStatusMessage(diagnosis.Status, diagnosis.Progress)

	var resultsID *string
	if diagnosis.Status == "completed" {
		results, err := h.repo.GetResults(ctx, diagnosisID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetDiagnosisStatusResponse{
		Body: models.GetDiagnosisStatusResponseBody{
			ID:        diagnosis.ID,
			Status:    diagnosis.Status,
			Progress:  diagnosis.Progress,
			Message:   message,
			ResultsID: resultsID,
		},
	}, nil
}

// GetDiagnosisResults returns the diagnosis results
func (h *DiagnosisHandler) GetDiagnosisResults(ctx context.Context, req *models.GetDiagnosisResultsRequest) (*models.GetDiagnosisResultsResponse, error) {
	diagnosisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid diagnosis ID", err)
	}

	// Get diagnosis to verify it exists and is completed
	diagnosis, err := h.repo.GetByID(ctx, diagnosisID)
	if err != nil {
		return nil, huma.Error404NotFound("Diagnosis not found", err)
	}

	if diagnosis.Status != "completed" {
		return nil, huma.Error409Conflict("Diagnosis not yet completed",
			fmt.Errorf("diagnosis status is %s", diagnosis.Status))
	}

	results, err := h.repo.GetResults(ctx, diagnosisID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	machineInfo, _ := h.repo.GetMachineInfo(ctx, diagnosisID) // Ignore error if no machine info

	return &models.GetDiagnosisResultsResponse{
		Body: models.GetDiagnosisResultsResponseBody{
			ID:          results.ID,
			SampleRate:  results.SampleRate,
			AxisReports: results.AxisReports,
			RMSEvents:   results.RMSEvents,
			Warnings:    results.Warnings,
			MachineInfo: machineInfo,
			CreatedAt:   results.CreatedAt,
		},
	}, nil
}

// generateStatusMessage creates a human-readable status message
func (h *DiagnosisHandler) generateStatusMessage(status string, progress int) string {
	switch status {
	case "pending":
		return "Diagnosis queued for processing..."
	case "processing":
		if progress < 25 {
			return "Starting diagnosis..."
		} else if progress < 50 {
			return "Downloading dataset..."
		} else if progress < 90 {
			return "Analyzing vibration spectra..."
		} else {
			return "Finalizing results..."
		}
	case "completed":
		return "Diagnosis complete!"
	case "failed":
		return "Diagnosis failed. Please try again."
	default:
		return "Unknown status"
	}
}
