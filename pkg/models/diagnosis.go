package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateDiagnosisRequest represents a request to create a new diagnosis
type CreateDiagnosisRequest struct {
	Body struct {
		SessionID string `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
		FileSize  int64  `json:"file_size" minimum:"100" maximum:"52428800" required:"true" doc:"Dataset file size in bytes"`
		MimeType  string `json:"mime_type" enum:"text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/vnd.ms-excel" required:"true" doc:"Dataset MIME type"`
	}
}

// CreateDiagnosisResponseBody is the body of the create diagnosis response
type CreateDiagnosisResponseBody struct {
	ID        string `json:"id" doc:"Diagnosis unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed S3 URL for file upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateDiagnosisResponse represents the response from creating a diagnosis
type CreateDiagnosisResponse struct {
	Body CreateDiagnosisResponseBody
}

// AddMachineInfoRequest carries the operator-supplied machine parameters
type AddMachineInfoRequest struct {
	ID   string `path:"id" doc:"Diagnosis ID"`
	Body struct {
		RPM         float64 `json:"rpm" exclusiveMinimum:"0" required:"true" doc:"Shaft rotational speed in RPM"`
		AxialAxis   string  `json:"axial_axis" enum:"x,y,z" required:"true" doc:"Sensor axis aligned with the shaft"`
		BearingInfo string  `json:"bearing_info,omitempty" maxLength:"500" doc:"Bearing defect frequencies, KEY=VALUE[,KEY=VALUE...] in Hz"`
	}
}

// AddMachineInfoResponse returns the machine info that was saved
type AddMachineInfoResponse struct {
	Body *MachineInfo `json:"-"`
}

// StartProcessingRequest represents a request to start processing an uploaded dataset
type StartProcessingRequest struct {
	ID      string `path:"id" doc:"Diagnosis ID"`
	MaxRows int    `query:"max_rows" minimum:"0" doc:"Keep only the most recent N rows (0 = all)"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// GetDiagnosisStatusRequest represents a request to get diagnosis status
type GetDiagnosisStatusRequest struct {
	ID string `path:"id" doc:"Diagnosis ID"`
}

// GetDiagnosisStatusResponseBody is the body of the status response
type GetDiagnosisStatusResponseBody struct {
	ID        string  `json:"id" doc:"Diagnosis ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Diagnosis status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Diagnosis progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when the diagnosis completes"`
}

// GetDiagnosisStatusResponse represents the current status of a diagnosis
type GetDiagnosisStatusResponse struct {
	Body GetDiagnosisStatusResponseBody
}

// GetDiagnosisResultsRequest represents a request to get diagnosis results
type GetDiagnosisResultsRequest struct {
	ID string `path:"id" doc:"Diagnosis ID"`
}

// GetDiagnosisResultsResponseBody is the body of the results response
type GetDiagnosisResultsResponseBody struct {
	ID          string       `json:"id" doc:"Diagnosis ID"`
	SampleRate  float64      `json:"sample_rate" doc:"Estimated sampling frequency in Hz"`
	AxisReports []AxisReport `json:"axis_reports" doc:"Per-axis spectra and fault matches"`
	RMSEvents   []RMSEvent   `json:"rms_events,omitempty" doc:"Rolling-RMS severity events"`
	Warnings    []string     `json:"warnings,omitempty" doc:"Non-fatal conditions hit during processing"`
	MachineInfo *MachineInfo `json:"machine_info,omitempty" doc:"Machine parameters used for the run"`
	CreatedAt   time.Time    `json:"created_at" doc:"Diagnosis creation timestamp"`
}

// GetDiagnosisResultsResponse represents the complete diagnosis results
type GetDiagnosisResultsResponse struct {
	Body GetDiagnosisResultsResponseBody
}

// Diagnosis represents the core diagnosis entity (for internal use)
type Diagnosis struct {
	ID           string     `json:"id"`
	SessionID    string     `json:"session_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	DatasetS3Key *string    `json:"dataset_s3_key,omitempty"`
	ErrorMsg     *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// MachineInfo represents the machine parameters attached to a diagnosis
type MachineInfo struct {
	ID          string    `json:"id" doc:"Machine info unique identifier"`
	DiagnosisID string    `json:"diagnosis_id" doc:"Associated diagnosis ID"`
	RPM         float64   `json:"rpm" doc:"Shaft rotational speed in RPM"`
	AxialAxis   string    `json:"axial_axis" doc:"Sensor axis aligned with the shaft"`
	BearingInfo string    `json:"bearing_info,omitempty" doc:"Bearing defect frequency specification"`
	CreatedAt   time.Time `json:"created_at" doc:"When machine info was added"`
}

// DiagnosisResults represents the stored diagnosis results
type DiagnosisResults struct {
	ID          string       `json:"id"`
	DiagnosisID string       `json:"diagnosis_id"`
	SampleRate  float64      `json:"sample_rate"`
	AxisReports []AxisReport `json:"axis_reports"`
	RMSEvents   []RMSEvent   `json:"rms_events,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
