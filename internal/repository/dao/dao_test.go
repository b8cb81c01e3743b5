package dao_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/db"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/repotest"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "santa.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func TestSQLite_EventDAO(t *testing.T) {
	repotest.RunEventDAO(t, func(t *testing.T) repository.EventDAO {
		return dao.NewEventDAO(openSQLite(t))
	})
}

func TestSQLite_AssignmentDAO(t *testing.T) {
	repotest.RunAssignmentDAO(t, func(t *testing.T) repository.AssignmentDAO {
		return dao.NewAssignmentDAO(openSQLite(t))
	})
}

func TestSQLite_ClosedDatabaseIsStorageError(t *testing.T) {
	gdb := openSQLite(t)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = dao.NewEventDAO(gdb).List(context.Background())
	assert.ErrorIs(t, err, dao.ErrStorageUnavailable)

	_, err = dao.NewAssignmentDAO(gdb).Find(context.Background(), "party")
	assert.ErrorIs(t, err, dao.ErrStorageUnavailable)
}

// startPostgres runs a throwaway Postgres container. The test is skipped when
// Docker is not reachable.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	pool.MaxWait = 90 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=santa",
			"POSTGRES_PASSWORD=santa",
			"POSTGRES_DB=santa",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})
	_ = resource.Expire(300)

	url := fmt.Sprintf("postgres://santa:santa@%s/santa?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var gdb *gorm.DB
	err = pool.Retry(func() error {
		var err error
		gdb, err = db.OpenPostgresWithURL(url)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	require.NoError(t, err)

	return gdb
}

func TestPostgres_DAOs(t *testing.T) {
	gdb := startPostgres(t)

	reset := func(t *testing.T) {
		t.Helper()
		require.NoError(t, dao.DropAllTables(gdb))
		require.NoError(t, dao.InitTables(gdb))
	}

	t.Run("events", func(t *testing.T) {
		repotest.RunEventDAO(t, func(t *testing.T) repository.EventDAO {
			reset(t)
			return dao.NewEventDAO(gdb)
		})
	})

	t.Run("assignments", func(t *testing.T) {
		repotest.RunAssignmentDAO(t, func(t *testing.T) repository.AssignmentDAO {
			reset(t)
			return dao.NewAssignmentDAO(gdb)
		})
	})
}
