package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"trrcms"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type StorageOptions struct {
	// AttachmentsPath holds committed attachment files, content addressed.
	AttachmentsPath string `env:"STORAGE_ATTACHMENTS_PATH" envDefault:"./data/attachments"`
	// StagingPath holds blobs extracted from containers pending commit.
	StagingPath string `env:"STORAGE_STAGING_PATH" envDefault:"./data/staging"`
	// ContainersPath holds ingested survey containers awaiting processing.
	ContainersPath string `env:"STORAGE_CONTAINERS_PATH" envDefault:"./data/containers"`
	// ArchivePath is the root of the year/month archive of committed containers.
	ArchivePath string `env:"STORAGE_ARCHIVE_PATH" envDefault:"./data/archives"`
}

type PipelineOptions struct {
	WorkerEnabled bool          `env:"PIPELINE_WORKER_ENABLED" envDefault:"true"`
	PollInterval  time.Duration `env:"PIPELINE_POLL_INTERVAL" envDefault:"5s"`
	// WorkerBatchSize caps how many packages one poll cycle may pick up.
	WorkerBatchSize int `env:"PIPELINE_WORKER_BATCH_SIZE" envDefault:"4"`
}

type MatchingOptions struct {
	// PersonHighThreshold and PersonMediumThreshold split composite person
	// scores (0-100) into confidence tiers. Pairs below medium are discarded.
	PersonHighThreshold   int `env:"MATCHING_PERSON_HIGH_THRESHOLD" envDefault:"85"`
	PersonMediumThreshold int `env:"MATCHING_PERSON_MEDIUM_THRESHOLD" envDefault:"60"`
}

func (m *MatchingOptions) Validate() error {
	if m.PersonMediumThreshold <= 0 || m.PersonHighThreshold > 100 {
		return fmt.Errorf("matching thresholds must fall in (0, 100], got medium=%d high=%d", m.PersonMediumThreshold, m.PersonHighThreshold)
	}
	if m.PersonMediumThreshold > m.PersonHighThreshold {
		return fmt.Errorf("medium threshold %d exceeds high threshold %d", m.PersonMediumThreshold, m.PersonHighThreshold)
	}
	return nil
}

// SpatialOptions bound the survey area. Defaults cover the Aleppo governorate
// operating region.
type SpatialOptions struct {
	MinLatitude  float64 `env:"SPATIAL_MIN_LAT" envDefault:"35.8"`
	MaxLatitude  float64 `env:"SPATIAL_MAX_LAT" envDefault:"36.5"`
	MinLongitude float64 `env:"SPATIAL_MIN_LON" envDefault:"36.9"`
	MaxLongitude float64 `env:"SPATIAL_MAX_LON" envDefault:"37.5"`
}

func (s *SpatialOptions) Validate() error {
	if s.MinLatitude >= s.MaxLatitude {
		return fmt.Errorf("spatial bounds: min latitude %f must be below max %f", s.MinLatitude, s.MaxLatitude)
	}
	if s.MinLongitude >= s.MaxLongitude {
		return fmt.Errorf("spatial bounds: min longitude %f must be below max %f", s.MinLongitude, s.MaxLongitude)
	}
	return nil
}

type VocabularyOptions struct {
	// SeedPath points at the TOML seed applied by `trrcms vocab seed`.
	SeedPath string `env:"VOCABULARY_SEED_PATH" envDefault:"config/vocabularies.toml"`
}

// OpsOptions configure the operational listener (health and metrics only).
type OpsOptions struct {
	Enabled bool   `env:"OPS_SERVER_ENABLED" envDefault:"true"`
	Address string `env:"OPS_SERVER_ADDRESS" envDefault:"localhost:8090"`
}

type Configuration struct {
	Database   DatabaseOptions
	Storage    StorageOptions
	Pipeline   PipelineOptions
	Matching   MatchingOptions
	Spatial    SpatialOptions
	Vocabulary VocabularyOptions
	Ops        OpsOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching configuration error: %w", err)
	}
	if err := c.Spatial.Validate(); err != nil {
		return fmt.Errorf("spatial configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()

	return nil
}

func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("failed to close log file: %v", err)
		}
		c.logFile = nil
	}
}
