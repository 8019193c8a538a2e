package commands

import (
	"database/sql"

	"github.com/growthlab/atlas/config"
	"github.com/growthlab/atlas/db"
	"github.com/growthlab/atlas/errors"
	"github.com/growthlab/atlas/logger"
)

// openDatabase opens and migrates the configured database. Uses
// logger.Logger for db operations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", cfg.Database.Path)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", cfg.Database.Path)
	}

	return database, nil
}
