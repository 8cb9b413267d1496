package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gemini   GeminiConfig
	Search   SearchConfig
	Geocoder GeocoderConfig
	Lookup   LookupConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

type GeminiConfig struct {
	APIKey      string
	TextModel   string
	VisionModel string
}

type SearchConfig struct {
	BaseURL string
	APIKey  string
}

type GeocoderConfig struct {
	BaseURL string
	APIKey  string
}

type LookupConfig struct {
	Timeout     time.Duration // per upstream call
	MaxListings int           // candidate listings passed to the model
	CacheTTL    time.Duration // redis price-lookup cache
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("GEMINI_TEXT_MODEL", "gemini-pro")
	viper.SetDefault("GEMINI_VISION_MODEL", "gemini-1.5-pro")
	viper.SetDefault("SEARCH_BASE_URL", "https://serpapi.com/search.json")
	viper.SetDefault("GEOCODER_BASE_URL", "https://api.openweathermap.org/geo/1.0/reverse")
	viper.SetDefault("LOOKUP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("LOOKUP_MAX_LISTINGS", 5)
	viper.SetDefault("LOOKUP_CACHE_TTL_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Gemini: GeminiConfig{
			APIKey:      viper.GetString("GEMINI_API_KEY"),
			TextModel:   viper.GetString("GEMINI_TEXT_MODEL"),
			VisionModel: viper.GetString("GEMINI_VISION_MODEL"),
		},
		Search: SearchConfig{
			BaseURL: viper.GetString("SEARCH_BASE_URL"),
			APIKey:  viper.GetString("SERPAPI_KEY"),
		},
		Geocoder: GeocoderConfig{
			BaseURL: viper.GetString("GEOCODER_BASE_URL"),
			APIKey:  viper.GetString("OPENWEATHERMAP_API_KEY"),
		},
		Lookup: LookupConfig{
			Timeout:     time.Duration(viper.GetInt("LOOKUP_TIMEOUT_SECONDS")) * time.Second,
			MaxListings: viper.GetInt("LOOKUP_MAX_LISTINGS"),
			CacheTTL:    time.Duration(viper.GetInt("LOOKUP_CACHE_TTL_MINUTES")) * time.Minute,
		},
	}
}
