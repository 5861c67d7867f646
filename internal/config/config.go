package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	AccessTTL string `yaml:"access_ttl"`
}

type SessionConfig struct {
	TTL string `yaml:"ttl"`
}

type CodesConfig struct {
	VerificationTTL string `yaml:"verification_ttl"`
	LinkTTL         string `yaml:"link_ttl"`
	IssueRetries    int    `yaml:"issue_retries"`
	ExpireGrace     string `yaml:"expire_grace"`
	SweepInterval   string `yaml:"sweep_interval"`
	ResendWindow    string `yaml:"resend_window"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Session  SessionConfig  `yaml:"session"`
	Codes    CodesConfig    `yaml:"codes"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type Config struct {
	Port          string
	GinMode       string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	SessionTTL time.Duration

	VerificationTTL time.Duration
	LinkTTL         time.Duration
	IssueRetries    int
	ExpireGrace     time.Duration
	SweepInterval   time.Duration
	ResendWindow    time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and applies environment overrides for the
// secrets that should not live in the file.
func Load() (*Config, error) {
	configFile, err := loadConfigFile(env("CONFIG_PATH", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	sessTTL, err := time.ParseDuration(configFile.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}
	verTTL, err := time.ParseDuration(configFile.Codes.VerificationTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid verification code TTL: %w", err)
	}
	linkTTL, err := time.ParseDuration(configFile.Codes.LinkTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid link code TTL: %w", err)
	}
	grace, err := time.ParseDuration(configFile.Codes.ExpireGrace)
	if err != nil {
		return nil, fmt.Errorf("invalid expire grace: %w", err)
	}
	sweep, err := time.ParseDuration(configFile.Codes.SweepInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	resendWnd, err := time.ParseDuration(configFile.Codes.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid resend window: %w", err)
	}

	return &Config{
		Port:          fmt.Sprintf("%d", configFile.App.Port),
		GinMode:       configFile.App.GinMode,
		DSN:           env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTSecret:  env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:  configFile.JWT.Issuer,
		AccessTTL:  accTTL,
		SessionTTL: sessTTL,

		VerificationTTL: verTTL,
		LinkTTL:         linkTTL,
		IssueRetries:    configFile.Codes.IssueRetries,
		ExpireGrace:     grace,
		SweepInterval:   sweep,
		ResendWindow:    resendWnd,

		SMTPHost:     env("SMTP_HOST", configFile.SMTP.Host),
		SMTPPort:     env("SMTP_PORT", configFile.SMTP.Port),
		SMTPUsername: env("SMTP_USERNAME", configFile.SMTP.Username),
		SMTPPassword: env("SMTP_PASSWORD", configFile.SMTP.Password),
		SMTPFrom:     env("SMTP_FROM", configFile.SMTP.From),
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	return &config, nil
}
