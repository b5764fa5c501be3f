package api

import (
	"database/sql"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/rotorlabs/rotordiag/internal/api/handlers"
	"github.com/rotorlabs/rotordiag/internal/processing"
	"github.com/rotorlabs/rotordiag/internal/repository"
	"github.com/rotorlabs/rotordiag/internal/storage"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(router *chi.Mux, api huma.API, db *sql.DB, s3Service storage.S3Service, diagnosisRepo repository.DiagnosisRepository, processingSvc processing.ProcessingService) {
	// Initialize handlers
	diagnosisHandler := handlers.NewDiagnosisHandler(diagnosisRepo, s3Service, processingSvc)

	// Register diagnosis routes
	huma.Register(api, huma.Operation{
		OperationID: "createDiagnosis",
		Method:      http.MethodPost,
		Path:        "/api/diagnoses",
		Summary:     "Create a new diagnosis",
		Description: "Creates a new diagnosis record and returns an upload URL for the vibration dataset",
		Tags:        []string{"Diagnosis"},
	}, diagnosisHandler.CreateDiagnosis)

	huma.Register(api, huma.Operation{
		OperationID: "addMachineInfo",
		Method:      http.MethodPost,
		Path:        "/api/diagnoses/{id}/machine",
		Summary:     "Add machine information",
		Description: "Attaches shaft speed, axial axis and optional bearing frequencies to a diagnosis",
		Tags:        []string{"Diagnosis"},
	}, diagnosisHandler.AddMachineInfo)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/diagnoses/{id}/process",
		Summary:     "Start processing diagnosis",
		Description: "Starts processing an uploaded vibration dataset",
		Tags:        []string{"Diagnosis"},
	}, diagnosisHandler.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "getDiagnosisStatus",
		Method:      http.MethodGet,
		Path:        "/api/diagnoses/{id}/status",
		Summary:     "Get diagnosis status",
		Description: "Returns the current status and progress of a diagnosis",
		Tags:        []string{"Diagnosis"},
	}, diagnosisHandler.GetDiagnosisStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getDiagnosisResults",
		Method:      http.MethodGet,
		Path:        "/api/diagnoses/{id}/results",
		Summary:     "Get diagnosis results",
		Description: "Returns the complete diagnosis results including per-axis spectra and fault matches",
		Tags:        []string{"Diagnosis"},
	}, diagnosisHandler.GetDiagnosisResults)
}
