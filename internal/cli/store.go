package cli

import (
	"fmt"

	"github.com/Eursukkul/table-booking/config"
	"github.com/Eursukkul/table-booking/internal/repository"
	"github.com/Eursukkul/table-booking/pkg/database"
)

// openRepository connects the configured storage backend. The returned func
// releases the underlying connection.
func openRepository(cfg *config.Config) (repository.ReservationRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgresDB(cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("get sql.DB: %w", err)
		}
		return repository.NewReservationRepository(db), func() { sqlDB.Close() }, nil
	default:
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewKVRepository(db), func() { db.Close() }, nil
	}
}
