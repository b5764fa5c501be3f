package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotorlabs/rotordiag/internal/repository"
	"github.com/rotorlabs/rotordiag/pkg/models"
)

// PostgresDiagnosisRepository implements DiagnosisRepository for PostgreSQL
type PostgresDiagnosisRepository struct {
	db *sql.DB
}

// NewPostgresDiagnosisRepository creates a new PostgreSQL diagnosis repository
func NewPostgresDiagnosisRepository(db *sql.DB) repository.DiagnosisRepository {
	return &PostgresDiagnosisRepository{db: db}
}

// Create inserts a new diagnosis record
func (r *PostgresDiagnosisRepository) Create(ctx context.Context, diagnosis *models.Diagnosis) error {
	query := `
		INSERT INTO diagnoses (id, session_id, status, progress, dataset_s3_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		diagnosis.ID,
		diagnosis.SessionID,
		diagnosis.Status,
		diagnosis.Progress,
		diagnosis.DatasetS3Key,
		diagnosis.CreatedAt,
		diagnosis.UpdatedAt)

	return err
}

// GetByID retrieves a diagnosis by ID
func (r *PostgresDiagnosisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Diagnosis, error) {
	query := `
		SELECT id, session_id, status, progress, dataset_s3_key, error_message, created_at, updated_at, completed_at
		FROM diagnoses
		WHERE id = $1`

	var diagnosis models.Diagnosis
	var datasetS3Key, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&diagnosis.ID,
		&diagnosis.SessionID,
		&diagnosis.Status,
		&diagnosis.Progress,
		&datasetS3Key,
		&errorMsg,
		&diagnosis.CreatedAt,
		&diagnosis.UpdatedAt,
		&completedAt)

	if err != nil {
		return nil, err
	}

	if datasetS3Key.Valid {
		diagnosis.DatasetS3Key = &datasetS3Key.String
	}
	if errorMsg.Valid {
		diagnosis.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		diagnosis.CompletedAt = &completedAt.Time
	}

	return &diagnosis, nil
}

// GetBySessionID retrieves diagnoses by session ID
func (r *PostgresDiagnosisRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Diagnosis, error) {
	query := `
		SELECT id, session_id, status, progress, dataset_s3_key, error_message, created_at, updated_at, completed_at
		FROM diagnoses
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagnoses []*models.Diagnosis
	for rows.Next() {
		var diagnosis models.Diagnosis
		var datasetS3Key, errorMsg sql.NullString
		var completedAt sql.NullTime

		err := rows.Scan(
			&diagnosis.ID,
			&diagnosis.SessionID,
			&diagnosis.Status,
			&diagnosis.Progress,
			&datasetS3Key,
			&errorMsg,
			&diagnosis.CreatedAt,
			&diagnosis.UpdatedAt,
			&completedAt)

		if err != nil {
			return nil, err
		}

		if datasetS3Key.Valid {
			diagnosis.DatasetS3Key = &datasetS3Key.String
		}
		if errorMsg.Valid {
			diagnosis.ErrorMsg = &errorMsg.String
		}
		if completedAt.Valid {
			diagnosis.CompletedAt = &completedAt.Time
		}

		diagnoses = append(diagnoses, &diagnosis)
	}

	return diagnoses, rows.Err()
}

// UpdateStatus updates the status and progress of a diagnosis
func (r *PostgresDiagnosisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE diagnoses
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks a diagnosis as failed with an error message
func (r *PostgresDiagnosisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE diagnoses
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores diagnosis results
func (r *PostgresDiagnosisRepository) StoreResults(ctx context.Context, results *models.DiagnosisResults) error {
	axisReports, err := json.Marshal(results.AxisReports)
	if err != nil {
		return fmt.Errorf("failed to marshal axis reports: %w", err)
	}

	rmsEvents, err := json.Marshal(results.RMSEvents)
	if err != nil {
		return fmt.Errorf("failed to marshal rms events: %w", err)
	}

	warnings, err := json.Marshal(results.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := `
		INSERT INTO diagnosis_results (id, diagnosis_id, sample_rate, axis_reports, rms_events, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.DiagnosisID,
		results.SampleRate,
		string(axisReports),
		string(rmsEvents),
		string(warnings),
		results.CreatedAt)

	return err
}

// GetResults retrieves diagnosis results
func (r *PostgresDiagnosisRepository) GetResults(ctx context.Context, diagnosisID uuid.UUID) (*models.DiagnosisResults, error) {
	query := `
		SELECT id, diagnosis_id, sample_rate, axis_reports, rms_events, warnings, created_at
		FROM diagnosis_results
		WHERE diagnosis_id = $1`

	var results models.DiagnosisResults
	var axisReportsStr string
	var rmsEventsStr, warningsStr sql.NullString

	err := r.db.QueryRowContext(ctx, query, diagnosisID).Scan(
		&results.ID,
		&results.DiagnosisID,
		&results.SampleRate,
		&axisReportsStr,
		&rmsEventsStr,
		&warningsStr,
		&results.CreatedAt)

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(axisReportsStr), &results.AxisReports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal axis reports: %w", err)
	}
	if rmsEventsStr.Valid {
		if err := json.Unmarshal([]byte(rmsEventsStr.String), &results.RMSEvents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rms events: %w", err)
		}
	}
	if warningsStr.Valid {
		if err := json.Unmarshal([]byte(warningsStr.String), &results.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}

	return &results, nil
}

// CreateMachineInfo inserts machine parameters for a diagnosis
func (r *PostgresDiagnosisRepository) CreateMachineInfo(ctx context.Context, info *models.MachineInfo) error {
	query := `
		INSERT INTO machine_info (id, diagnosis_id, rpm, axial_axis, bearing_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		info.ID,
		info.DiagnosisID,
		info.RPM,
		info.AxialAxis,
		info.BearingInfo,
		info.CreatedAt)

	return err
}

// GetMachineInfo retrieves machine parameters by diagnosis ID
func (r *PostgresDiagnosisRepository) GetMachineInfo(ctx context.Context, diagnosisID uuid.UUID) (*models.MachineInfo, error) {
	query := `
		SELECT id, diagnosis_id, rpm, axial_axis, bearing_info, created_at
		FROM machine_info
		WHERE diagnosis_id = $1`

	var info models.MachineInfo
	var bearingInfo sql.NullString

	err := r.db.QueryRowContext(ctx, query, diagnosisID).Scan(
		&info.ID,
		&info.DiagnosisID,
		&info.RPM,
		&info.AxialAxis,
		&bearingInfo,
		&info.CreatedAt)

	if err != nil {
		return nil, err
	}

	if bearingInfo.Valid {
		info.BearingInfo = bearingInfo.String
	}

	return &info, nil
}
