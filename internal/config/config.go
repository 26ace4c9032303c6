package config

import (
	"fmt"
	"os"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 8080
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "nexhost"
	defaultUploadDir  = "./uploads"
	defaultUploadURL  = "/uploads"
	defaultMaxUpload  = 10 // MiB
	envJWTSecret      = "NEXHOST_JWT_SECRET"
	envDBPassword     = "NEXHOST_DB_PASSWORD"
	envS3AccessKey    = "NEXHOST_S3_ACCESS_KEY_ID"
	envS3SecretKey    = "NEXHOST_S3_SECRET_ACCESS_KEY"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Storage        StorageConfig  `yaml:"storage"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// StorageConfig selects and configures the media storage provider.
type StorageConfig struct {
	Driver       string   `yaml:"driver"` // "local" | "s3"
	LocalDir     string   `yaml:"local_dir"`
	LocalBaseURL string   `yaml:"local_base_url"`
	MaxUploadMB  int      `yaml:"max_upload_mb"`
	S3           S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	CustomDomain    string `yaml:"custom_domain"`
}

// Load reads the YAML config file and applies defaults and env overrides.
// A missing file yields a default development config.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := &AppConfig{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = defaultEnv
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = defaultUploadDir
	}
	if c.Storage.LocalBaseURL == "" {
		c.Storage.LocalBaseURL = defaultUploadURL
	}
	if c.Storage.MaxUploadMB <= 0 {
		c.Storage.MaxUploadMB = defaultMaxUpload
	}
}

func (c *AppConfig) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(envJWTSecret)); v != "" {
		c.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(envDBPassword)); v != "" {
		c.Database.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(envS3AccessKey)); v != "" {
		c.Storage.S3.AccessKeyID = v
	}
	if v := strings.TrimSpace(os.Getenv(envS3SecretKey)); v != "" {
		c.Storage.S3.SecretAccessKey = v
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// DSN returns the MySQL DSN, assembling one from parts when not given verbatim.
func (c *AppConfig) DSN() string {
	if v := strings.TrimSpace(c.Database.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Database.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Database.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.Database.User)
	if user == "" {
		user = defaultDBUser
	}
	name := strings.TrimSpace(c.Database.Name)
	if name == "" {
		name = defaultDBName
	}

	dsn := mysqldriver.NewConfig()
	dsn.User = user
	dsn.Passwd = c.Database.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", host, port)
	dsn.DBName = name
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}
