package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Source   SourceConfig
	Loader   LoaderConfig
	Lock     LockConfig
	Metrics  MetricsConfig
	Report   ReportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// SourceConfig locates the roster and the per-class configuration documents.
type SourceConfig struct {
	RosterPath  string
	RosterSheet string
	ConfigDir   string
	Columns     ColumnConfig
}

// ColumnConfig names the identity columns of the roster.
type ColumnConfig struct {
	Name         string
	Registration string
	Class        string
	SocialName   string
	Suspended    string
	Photo        string
}

// LoaderConfig holds the default loader switches; CLI flags override them.
type LoaderConfig struct {
	Atomic bool
	Strict bool
	Reset  bool
}

// LockConfig gates the redis run lock.
type LockConfig struct {
	Enabled bool
	Key     string
	TTL     time.Duration
}

// MetricsConfig configures the Pushgateway push performed after each run.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// ReportConfig controls where and how the run report is written.
type ReportConfig struct {
	Dir       string
	Format    string
	Retention time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Source = SourceConfig{
		RosterPath:  v.GetString("ROSTER_PATH"),
		RosterSheet: v.GetString("ROSTER_SHEET"),
		ConfigDir:   v.GetString("CONFIG_DIR"),
		Columns: ColumnConfig{
			Name:         v.GetString("ROSTER_COLUMN_NAME"),
			Registration: v.GetString("ROSTER_COLUMN_REGISTRATION"),
			Class:        v.GetString("ROSTER_COLUMN_CLASS"),
			SocialName:   v.GetString("ROSTER_COLUMN_SOCIAL_NAME"),
			Suspended:    v.GetString("ROSTER_COLUMN_SUSPENDED"),
			Photo:        v.GetString("ROSTER_COLUMN_PHOTO"),
		},
	}

	cfg.Loader = LoaderConfig{
		Atomic: v.GetBool("LOADER_ATOMIC"),
		Strict: v.GetBool("LOADER_STRICT"),
		Reset:  v.GetBool("LOADER_RESET"),
	}

	cfg.Lock = LockConfig{
		Enabled: v.GetBool("LOCK_ENABLED"),
		Key:     v.GetString("LOCK_KEY"),
		TTL:     parseDuration(v.GetString("LOCK_TTL"), 30*time.Minute),
	}

	cfg.Metrics = MetricsConfig{
		PushgatewayURL: v.GetString("METRICS_PUSHGATEWAY_URL"),
		Job:            v.GetString("METRICS_JOB"),
	}

	cfg.Report = ReportConfig{
		Dir:       v.GetString("REPORT_DIR"),
		Format:    strings.ToLower(strings.TrimSpace(v.GetString("REPORT_FORMAT"))),
		Retention: parseDuration(v.GetString("REPORT_RETENTION"), 0),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "cdcc")
	v.SetDefault("DB_PASSWORD", "cdcc")
	v.SetDefault("DB_NAME", "cdcc")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("ROSTER_PATH", "alunos.csv")
	v.SetDefault("ROSTER_SHEET", "")
	v.SetDefault("CONFIG_DIR", ".")
	v.SetDefault("ROSTER_COLUMN_NAME", "nome")
	v.SetDefault("ROSTER_COLUMN_REGISTRATION", "matricula")
	v.SetDefault("ROSTER_COLUMN_CLASS", "turma")
	v.SetDefault("ROSTER_COLUMN_SOCIAL_NAME", "nomeSocial")
	v.SetDefault("ROSTER_COLUMN_SUSPENDED", "suspenso")
	v.SetDefault("ROSTER_COLUMN_PHOTO", "foto")

	v.SetDefault("LOADER_ATOMIC", false)
	v.SetDefault("LOADER_STRICT", false)
	v.SetDefault("LOADER_RESET", false)

	v.SetDefault("LOCK_ENABLED", false)
	v.SetDefault("LOCK_KEY", "roster-etl:run")
	v.SetDefault("LOCK_TTL", "30m")

	v.SetDefault("METRICS_PUSHGATEWAY_URL", "")
	v.SetDefault("METRICS_JOB", "roster_etl")

	v.SetDefault("REPORT_DIR", "./reports")
	v.SetDefault("REPORT_FORMAT", "none")
	v.SetDefault("REPORT_RETENTION", "")
}

// isMissingFile reports whether viper failed because .env does not exist.
// SetConfigFile bypasses the search path, so viper returns the raw fs error.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
