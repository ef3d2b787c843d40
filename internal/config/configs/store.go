package configs

import "fmt"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverGCS      = "gcs"
)

// Store selects where the ledgers persist. Driver is one of memory,
// sqlite, postgres, redis or gcs. The memory driver keeps nothing across
// restarts and is meant for development; sqlite suits a single process;
// postgres and redis let several processes share the ledgers and see each
// other's changes.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	// SQLitePath is the database file of the sqlite driver.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"landmarket.db"`
	// GCSBucket, GCSPrefix and GCSEndpoint configure the gcs driver. A
	// non-empty endpoint points at an emulator and disables authentication.
	GCSBucket   string `env:"GCS_BUCKET"`
	GCSPrefix   string `env:"GCS_PREFIX" envDefault:"ledger/"`
	GCSEndpoint string `env:"GCS_ENDPOINT"`
}

// Validate rejects unknown drivers and missing driver settings.
func (c Store) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverPostgres, DriverRedis:
		return nil
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite driver needs STORE_SQLITE_PATH")
		}
		return nil
	case DriverGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("gcs driver needs STORE_GCS_BUCKET")
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
}
