package internal

import (
	"fmt"
	"time"
)

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// ServerConfig drives cmd/server. An empty BlugeFilepath disables search,
// an empty ProcessorEndpoint disables content processing.
type ServerConfig struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3000"`
	GRPCHealthPort       int           `env:"GRPC_HEALTH_PORT,default=3001"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	StorageDriver        string        `env:"STORAGE_DRIVER,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/badger"`
	SQLiteFilepath       string        `env:"SQLITE_FILEPATH,default=./data/chat.db"`
	BlugeFilepath        string        `env:"BLUGE_FILEPATH"`
	ProcessorEndpoint    string        `env:"PROCESSOR_ENDPOINT"`
	ProcessorAPIKey      string        `env:"PROCESSOR_API_KEY"`
	ProcessorTimeout     time.Duration `env:"PROCESSOR_TIMEOUT,default=5s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ReadLimit            int64         `env:"READ_LIMIT,default=65536"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ReportInterval       time.Duration `env:"REPORT_INTERVAL,default=30s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func (c ServerConfig) Validate() error {
	switch c.StorageDriver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverBadger, DriverSQLite, c.StorageDriver)
	}
	if c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	}
	return nil
}

// ProcessorConfig drives cmd/processor.
type ProcessorConfig struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=4000"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	APIKey          string        `env:"API_KEY"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
