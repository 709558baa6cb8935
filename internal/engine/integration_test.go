package engine

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/database"
	"github.com/dbsmedya/gomask/internal/logger"
)

const integrationImage = "mysql:8.0"

// startMySQL runs a throwaway MySQL container. Set GOMASK_INTEGRATION=1 to
// enable; Docker is required.
func startMySQL(t *testing.T) *database.Manager {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	if os.Getenv("GOMASK_INTEGRATION") != "1" {
		t.Skip("Set GOMASK_INTEGRATION=1 to run integration tests")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        integrationImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "test_password",
				"MYSQL_DATABASE":      "gomask_test",
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start mysql container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	m, err := database.NewManager(&config.DatabaseConfig{
		Driver:   config.DriverMySQL,
		Host:     host,
		Port:     portNum,
		User:     "root",
		Password: "test_password",
		Database: "gomask_test",
		TLS:      "disable",
	})
	require.NoError(t, err)
	require.NoError(t, m.Connect(ctx))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestIntegration_PhoneAndCodeJobs(t *testing.T) {
	m := startMySQL(t)
	ctx := context.Background()

	stmts := []string{
		"CREATE TABLE orgs (id INT PRIMARY KEY)",
		`CREATE TABLE users (
			id INT PRIMARY KEY,
			phone VARCHAR(20) NULL,
			serial VARCHAR(10) NOT NULL,
			org_id INT NULL,
			created DATE NULL,
			FOREIGN KEY (org_id) REFERENCES orgs(id)
		)`,
		"INSERT INTO orgs VALUES (1)",
	}
	for i := 1; i <= 25; i++ {
		phone := fmt.Sprintf("'07000000%02d'", i)
		if i%5 == 0 {
			phone = "NULL"
		}
		stmts = append(stmts, fmt.Sprintf("INSERT INTO users VALUES (%d, %s, 'S%d', 1, '2000-01-01')", i, phone, i))
	}
	for _, s := range stmts {
		_, err := m.DB.ExecContext(ctx, s)
		require.NoError(t, err, s)
	}

	phoneJob := &config.JobConfig{
		Table:        "users",
		Columns:      []string{"phone"},
		PreserveNull: true,
		Generator: config.GeneratorConfig{
			Kind:  config.KindPhone,
			Phone: &config.PhoneParams{Country: "Uganda", Prefix: "7", Min: 1000000, Max: 9999999},
		},
	}
	o, err := NewOrchestrator(m, Options{
		JobName:    "phones",
		Job:        phoneJob,
		Processing: config.ProcessingConfig{BatchSize: 10, PreviewLimit: 10, UniqueMaxAttempts: 100, TransactionMode: config.TransactionPerJob, Seed: 7},
		Logger:     logger.NewNop(),
	})
	require.NoError(t, err)

	result, err := o.Execute(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.TotalRows)
	assert.Equal(t, int64(20), result.UpdatedRows)
	assert.Equal(t, int64(5), result.SkippedRows)
	assert.Equal(t, 3, result.Batches)

	var masked, nulls int
	require.NoError(t, m.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE phone LIKE '+2567%'").Scan(&masked))
	require.NoError(t, m.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE phone IS NULL").Scan(&nulls))
	assert.Equal(t, 20, masked)
	assert.Equal(t, 5, nulls)

	codeJob := &config.JobConfig{
		Table:   "users",
		Columns: []string{"serial", "org_id"},
		Filter:  []config.Predicate{{Column: "id", Operator: "<=", Value: 10}},
		Generator: config.GeneratorConfig{
			Kind:   config.KindCode,
			Unique: true,
			Code:   &config.CodeParams{Alphabet: "mixed", Length: 8, Prefix: "sn"},
		},
	}
	o, err = NewOrchestrator(m, Options{
		JobName:    "serials",
		Job:        codeJob,
		Processing: config.ProcessingConfig{BatchSize: 4, PreviewLimit: 3, UniqueMaxAttempts: 100, TransactionMode: config.TransactionPerBatch},
		Logger:     logger.NewNop(),
	})
	require.NoError(t, err)

	previews, err := o.Preview(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, previews, 3)

	result, err = o.Execute(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"org_id"}, result.ExcludedColumns)
	assert.Equal(t, int64(10), result.UpdatedRows)

	var renamed, orgs int
	require.NoError(t, m.DB.QueryRowContext(ctx, "SELECT COUNT(DISTINCT serial) FROM users WHERE serial LIKE 'SN%' AND id <= 10").Scan(&renamed))
	require.NoError(t, m.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE org_id = 1").Scan(&orgs))
	assert.Equal(t, 10, renamed)
	assert.Equal(t, 25, orgs, "foreign key column is never touched")
}
