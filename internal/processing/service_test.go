package processing

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rotorlabs/rotordiag/internal/repository"
	"github.com/rotorlabs/rotordiag/internal/repository/postgres"
	"github.com/rotorlabs/rotordiag/internal/storage"
	"github.com/rotorlabs/rotordiag/pkg/models"
)

// TestContainer holds test infrastructure
type TestContainer struct {
	postgresContainer testcontainers.Container
	minioContainer    testcontainers.Container
	dbURL             string
	minioURL          string
	bucketName        string
}

// SetupIntegrationTest sets up PostgreSQL and MinIO containers for integration testing
func SetupIntegrationTest(t *testing.T) *TestContainer {
	t.Helper()

	ctx := context.Background()

	// Start PostgreSQL container
	pg, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("rotordiag_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dbURL, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start MinIO container
	minioContainer, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)

	minioURL, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	bucketName := "rotordiag-test-" + uuid.New().String()[:8]
	require.NoError(t, createMinioBucket(ctx, minioURL, bucketName))

	return &TestContainer{
		postgresContainer: pg,
		minioContainer:    minioContainer,
		dbURL:             dbURL,
		minioURL:          minioURL,
		bucketName:        bucketName,
	}
}

// CleanupIntegrationTest cleans up test containers
func (tc *TestContainer) CleanupIntegrationTest(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tc.minioContainer != nil {
		require.NoError(t, tc.minioContainer.Terminate(ctx))
	}
	if tc.postgresContainer != nil {
		require.NoError(t, tc.postgresContainer.Terminate(ctx))
	}
}

func minioClient(t *testing.T, minioURL string) *miniogo.Client {
	t.Helper()
	client, err := miniogo.New(minioURL, &miniogo.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)
	return client
}

func createMinioBucket(ctx context.Context, minioURL, bucketName string) error {
	client, err := miniogo.New(minioURL, &miniogo.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		return err
	}
	return client.MakeBucket(ctx, bucketName, miniogo.MakeBucketOptions{})
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	schema, err := os.ReadFile("../../migrations/001_init.up.sql")
	require.NoError(t, err)

	_, err = db.Exec(string(schema))
	require.NoError(t, err)
}

// generateTestDataset builds a CSV with a 30 Hz fundamental and its third
// harmonic on the radial axes, sampled at 500 Hz for 10 seconds.
func generateTestDataset(t *testing.T) []byte {
	t.Helper()

	const fs = 500.0
	const duration = 10.0
	n := int(fs * duration)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	step := time.Duration(float64(time.Second) / fs)

	var buf bytes.Buffer
	buf.WriteString("t,x,y,z\n")
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * step)
		tt := float64(i) / fs
		x := math.Sin(2*math.Pi*30*tt) + 0.5*math.Sin(2*math.Pi*90*tt)
		y := 0.8 * math.Sin(2*math.Pi*30*tt)
		z := 0.1 * math.Sin(2*math.Pi*30*tt)
		fmt.Fprintf(&buf, "%s,%.6f,%.6f,%.6f\n", ts.Format(time.RFC3339Nano), x, y, z)
	}
	return buf.Bytes()
}

func createDiagnosisWithDataset(t *testing.T, ctx context.Context, tc *TestContainer, repo repository.DiagnosisRepository, data []byte) uuid.UUID {
	t.Helper()

	datasetKey := fmt.Sprintf("datasets/%s.csv", uuid.New())
	client := minioClient(t, tc.minioURL)
	_, err := client.PutObject(ctx, tc.bucketName, datasetKey, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: "text/csv"})
	require.NoError(t, err)

	diagnosisID := uuid.New()
	diagnosis := &models.Diagnosis{
		ID:           diagnosisID.String(),
		SessionID:    uuid.New().String(),
		Status:       "pending",
		DatasetS3Key: &datasetKey,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, diagnosis))

	return diagnosisID
}

// TestFullDiagnosisPipeline_Integration runs the complete pipeline against
// real PostgreSQL and MinIO containers.
func TestFullDiagnosisPipeline_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tc := SetupIntegrationTest(t)
	defer tc.CleanupIntegrationTest(t)

	ctx := context.Background()

	db, err := sql.Open("postgres", tc.dbURL)
	require.NoError(t, err)
	defer db.Close()

	runMigrations(t, db)
	repo := postgres.NewPostgresDiagnosisRepository(db)

	s3Service, err := storage.NewS3Service(storage.S3Config{
		Bucket:   tc.bucketName,
		Endpoint: tc.minioURL,
	})
	require.NoError(t, err)

	processingService := NewProcessingService(s3Service, repo, DefaultOptions())

	diagnosisID := createDiagnosisWithDataset(t, ctx, tc, repo, generateTestDataset(t))

	require.NoError(t, repo.CreateMachineInfo(ctx, &models.MachineInfo{
		ID:          uuid.New().String(),
		DiagnosisID: diagnosisID.String(),
		RPM:         1800, // 30 Hz shaft frequency
		AxialAxis:   "z",
		CreatedAt:   time.Now(),
	}))

	require.NoError(t, processingService.ProcessDiagnosis(ctx, diagnosisID, 0))

	diagnosis, err := repo.GetByID(ctx, diagnosisID)
	require.NoError(t, err)
	assert.Equal(t, "completed", diagnosis.Status)
	assert.Equal(t, 100, diagnosis.Progress)
	assert.NotNil(t, diagnosis.CompletedAt)

	results, err := repo.GetResults(ctx, diagnosisID)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, results.SampleRate, 1.0)
	require.Len(t, results.AxisReports, 3)

	var xReport *models.AxisReport
	for i := range results.AxisReports {
		if results.AxisReports[i].Axis == "x" {
			xReport = &results.AxisReports[i]
		}
	}
	require.NotNil(t, xReport)
	assert.Equal(t, "Radial", xReport.Role)
	assert.Empty(t, xReport.Error)

	var labels []string
	for _, m := range xReport.Matches {
		labels = append(labels, m.Label)
	}
	assert.Contains(t, labels, "Unbalance")
	assert.Contains(t, labels, "Looseness") // 90 Hz third harmonic

	for _, r := range results.AxisReports {
		if r.Axis == "z" {
			assert.Equal(t, "Axial", r.Role)
		}
	}

	// Radial amplitude stays above the RMS limit for the whole run
	assert.NotEmpty(t, results.RMSEvents)
}

// TestDiagnosisPipelineFailure_Integration checks error handling when the
// dataset key points nowhere.
func TestDiagnosisPipelineFailure_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tc := SetupIntegrationTest(t)
	defer tc.CleanupIntegrationTest(t)

	ctx := context.Background()

	db, err := sql.Open("postgres", tc.dbURL)
	require.NoError(t, err)
	defer db.Close()

	runMigrations(t, db)
	repo := postgres.NewPostgresDiagnosisRepository(db)

	s3Service, err := storage.NewS3Service(storage.S3Config{
		Bucket:   tc.bucketName,
		Endpoint: tc.minioURL,
	})
	require.NoError(t, err)

	processingService := NewProcessingService(s3Service, repo, DefaultOptions())

	nonExistentKey := "datasets/missing.csv"
	diagnosisID := uuid.New()
	diagnosis := &models.Diagnosis{
		ID:           diagnosisID.String(),
		SessionID:    uuid.New().String(),
		Status:       "pending",
		DatasetS3Key: &nonExistentKey,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, diagnosis))

	require.NoError(t, repo.CreateMachineInfo(ctx, &models.MachineInfo{
		ID:          uuid.New().String(),
		DiagnosisID: diagnosisID.String(),
		RPM:         1800,
		AxialAxis:   "z",
		CreatedAt:   time.Now(),
	}))

	// ProcessDiagnosis itself shouldn't error, but status should be failed
	require.NoError(t, processingService.ProcessDiagnosis(ctx, diagnosisID, 0))

	final, err := repo.GetByID(ctx, diagnosisID)
	require.NoError(t, err)
	assert.Equal(t, "failed", final.Status)
	require.NotNil(t, final.ErrorMsg)
	assert.Contains(t, *final.ErrorMsg, "download")
}

// TestDiagnosisMissingMachineInfo_Integration checks that processing without
// machine parameters fails the diagnosis instead of crashing.
func TestDiagnosisMissingMachineInfo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tc := SetupIntegrationTest(t)
	defer tc.CleanupIntegrationTest(t)

	ctx := context.Background()

	db, err := sql.Open("postgres", tc.dbURL)
	require.NoError(t, err)
	defer db.Close()

	runMigrations(t, db)
	repo := postgres.NewPostgresDiagnosisRepository(db)

	s3Service, err := storage.NewS3Service(storage.S3Config{
		Bucket:   tc.bucketName,
		Endpoint: tc.minioURL,
	})
	require.NoError(t, err)

	processingService := NewProcessingService(s3Service, repo, DefaultOptions())

	diagnosisID := createDiagnosisWithDataset(t, ctx, tc, repo, generateTestDataset(t))

	require.NoError(t, processingService.ProcessDiagnosis(ctx, diagnosisID, 0))

	final, err := repo.GetByID(ctx, diagnosisID)
	require.NoError(t, err)
	assert.Equal(t, "failed", final.Status)
}
