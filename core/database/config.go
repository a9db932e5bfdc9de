package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"aggregator.db"`
	// TimeoutSeconds bounds connection setup, reads and writes.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// IsValidDriver checks if the configured driver is supported.
func (c Config) IsValidDriver() bool {
	switch c.Driver {
	case DriverMySQL, DriverSQLite:
		return true
	default:
		return false
	}
}
