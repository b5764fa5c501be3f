package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotorlabs/rotordiag/pkg/models"
)

// DiagnosisRepository defines the interface for diagnosis data operations
type DiagnosisRepository interface {
	Create(ctx context.Context, diagnosis *models.Diagnosis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Diagnosis, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Diagnosis, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.DiagnosisResults) error
	GetResults(ctx context.Context, diagnosisID uuid.UUID) (*models.DiagnosisResults, error)
	CreateMachineInfo(ctx context.Context, info *models.MachineInfo) error
	GetMachineInfo(ctx context.Context, diagnosisID uuid.UUID) (*models.MachineInfo, error)
}
