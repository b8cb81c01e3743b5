package app

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/config"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/db"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/logger"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/filestore"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository/memstore"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	err = config.Watch(configPath, func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart to apply", zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	events, assignments, err := openStorage(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}

	s, err := api.NewServer(conf, events, assignments)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr), zap.String("storage", conf.Storage.Driver))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openStorage(conf *config.AppConfig) (repository.EventDAO, repository.AssignmentDAO, error) {
	switch conf.Storage.Driver {
	case config.StorageMemory:
		return memstore.NewEventStore(), memstore.NewAssignmentStore(), nil

	case config.StorageFile:
		store, err := filestore.Open(conf.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("filestore.Open -> %w", err)
		}
		return store.Events(), store.Assignments(), nil

	case config.StorageSQLite:
		gdb, err := db.OpenSQLite(conf.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("db.OpenSQLite -> %w", err)
		}
		return initGorm(gdb)

	case config.StoragePostgres:
		var (
			gdb *gorm.DB
			err error
		)
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			gdb, err = db.OpenPostgresWithURL(dbURL)
		} else {
			gdb, err = db.OpenPostgres(conf.Postgres)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres -> %w", err)
		}
		return initGorm(gdb)
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
}

func initGorm(gdb *gorm.DB) (repository.EventDAO, repository.AssignmentDAO, error) {
	if err := dao.InitTables(gdb); err != nil {
		return nil, nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return dao.NewEventDAO(gdb), dao.NewAssignmentDAO(gdb), nil
}
