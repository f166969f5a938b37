package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type ServerConfig struct {
	Port        int    `koanf:"port" validate:"required,min=1,max=65535"`
	Concurrency int    `koanf:"concurrency" validate:"required,min=1"`
	BodyLimit   int    `koanf:"body_limit" validate:"required,min=1"`
	AppName     string `koanf:"app_name" validate:"required"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

// Module tags log lines and error envelopes with the component that produced them.
type Module string

const (
	ModuleDatabase   Module = "database"
	ModuleOpenAI     Module = "openai"
	ModuleS3         Module = "s3"
	ModuleServer     Module = "server"
	ModuleSetting    Module = "setting"
	ModuleUpload     Module = "upload"
	ModuleGenerate   Module = "generate"
	ModuleFlashcards Module = "flashcards"
	ModuleExport     Module = "export"
)

type DatabaseConfig struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"required"`
	User         string   `koanf:"user" validate:"required"`
	Password     string   `koanf:"password"`
	Name         string   `koanf:"name" validate:"required"`
	MaxIdleConns int      `koanf:"max_idle_conns" validate:"min=0"`
	MaxOpenConns int      `koanf:"max_open_conns" validate:"min=0"`
	MaxLifetime  int      `koanf:"max_lifetime" validate:"min=0"`
	AutoMigrate  bool     `koanf:"auto_migrate"`
	Replicas     []string `koanf:"replicas"`
}

type OpenAIConfig struct {
	Key             string        `koanf:"key" validate:"required"`
	BaseURL         string        `koanf:"base_url" validate:"omitempty,url"`
	Model           string        `koanf:"model" validate:"required"`
	Temperature     float64       `koanf:"temperature" validate:"min=0,max=2"`
	MaxOutputTokens int           `koanf:"max_output_tokens" validate:"required,min=1"`
	Timeout         time.Duration `koanf:"timeout" validate:"required"`
}

type GenerationConfig struct {
	ChunkSize   int `koanf:"chunk_size" validate:"required,min=1"`
	MinQuantity int `koanf:"min_quantity" validate:"required,min=1"`
	MaxQuantity int `koanf:"max_quantity" validate:"required,gtefield=MinQuantity"`
}

type UploadConfig struct {
	MaxPDFBytes int64  `koanf:"max_pdf_bytes" validate:"required,min=1"`
	Archive     string `koanf:"archive" validate:"required,oneof=none local s3"`
	LocalDir    string `koanf:"local_dir" validate:"required_if=Archive local"`
}

type CorsConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"required"`
	AllowMethods []string `koanf:"allow_methods" validate:"required"`
	AllowHeaders []string `koanf:"allow_headers" validate:"required"`
}

type S3Config struct {
	Endpoint  string `koanf:"endpoint" validate:"required"`
	AccessKey string `koanf:"access_key" validate:"required"`
	SecretKey string `koanf:"secret_key" validate:"required"`
	Region    string `koanf:"region" validate:"required"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket" validate:"required"`
}

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Generation GenerationConfig `koanf:"generation"`
	Upload     UploadConfig     `koanf:"upload"`
	LogLevel   logLevel         `koanf:"log_level" validate:"oneof=debug info warn error fatal panic"`
	DSN        string           `koanf:"dsn"`
	S3         S3Config         `koanf:"s3" validate:"-"`
	Cors       CorsConfig       `koanf:"cors"`
}

func buildMySQLDSN(cfg DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

var defaultConfig = Config{
	Server: ServerConfig{
		Port:        8000,
		Concurrency: 256,
		BodyLimit:   12 * 1024 * 1024,
		AppName:     "mediflash",
	},
	Database: DatabaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "mediflash",
		MaxIdleConns: 5,
		MaxOpenConns: 20,
		MaxLifetime:  30,
		AutoMigrate:  true,
	},
	OpenAI: OpenAIConfig{
		Key:             "",
		BaseURL:         "https://api.openai.com/v1",
		Model:           "gpt-4o-mini",
		Temperature:     0.7,
		MaxOutputTokens: 4000,
		Timeout:         90 * time.Second,
	},
	Generation: GenerationConfig{
		ChunkSize:   12000,
		MinQuantity: 5,
		MaxQuantity: 20,
	},
	Upload: UploadConfig{
		MaxPDFBytes: 10 * 1024 * 1024,
		Archive:     "none",
		LocalDir:    "storage/uploads",
	},
	LogLevel: Info,
	S3: S3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		UseSSL:    false,
		Bucket:    "uploads",
	},
	Cors: CorsConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	},
}

// Cfg holds the configuration loaded by Init.
var Cfg = defaultConfig

// Init loads path into Cfg.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Cfg = *cfg
	return nil
}

// Load layers defaults, .env, the yaml file at path and APP_ prefixed
// environment variables, then validates the result. A missing yaml file is
// not an error. Nested keys use a double underscore: APP_OPENAI__KEY sets
// openai.key.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%v: load .env: %w", ModuleSetting, err)
	}

	k := koanf.New(".")
	cfg := defaultConfig
	cfg.Cors.AllowOrigins = append([]string(nil), defaultConfig.Cors.AllowOrigins...)
	cfg.Cors.AllowMethods = append([]string(nil), defaultConfig.Cors.AllowMethods...)
	cfg.Cors.AllowHeaders = append([]string(nil), defaultConfig.Cors.AllowHeaders...)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, err)
		}
	}

	if err := k.Load(env.Provider("APP_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%v: load env: %w", ModuleSetting, err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%v: unmarshal config: %w", ModuleSetting, err)
	}

	if cfg.DSN == "" {
		cfg.DSN = buildMySQLDSN(cfg.Database)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps APP_SERVER__PORT to server.port and APP_LOG_LEVEL to log_level.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
	return strings.ReplaceAll(key, "__", ".")
}

func validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return describe(err)
	}
	if cfg.Upload.Archive == "s3" {
		if err := v.Struct(cfg.S3); err != nil {
			return describe(err)
		}
	}
	return nil
}

func describe(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%v: config validation failed: %w", ModuleSetting, err)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v: config validation failed:", ModuleSetting))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("\n  - %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return errors.New(sb.String())
}
