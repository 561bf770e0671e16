package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	Port             string        `mapstructure:"PORT"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	SentimentURL     string        `mapstructure:"SENTIMENT_URL"`
	SentimentAPIKey  string        `mapstructure:"SENTIMENT_API_KEY"`
	SentimentTimeout time.Duration `mapstructure:"SENTIMENT_TIMEOUT"`
	CORSAllowed      string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	// Hours east of UTC used when turning calendar dates into instants.
	// The deployment reports in Athens local time.
	ReportTZOffsetHours int `mapstructure:"REPORT_TZ_OFFSET_HOURS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SENTIMENT_TIMEOUT", "15s")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REPORT_TZ_OFFSET_HOURS", 3)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
