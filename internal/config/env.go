package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Env struct {
	AppAddr            string        `env:"APP_ADDR" env-default:":18080"`
	GinMode            string        `env:"GIN_MODE"`
	LogLevel           string        `env:"LOG_LEVEL" env-default:"info"`
	JWTSecret          string        `env:"JWT_SECRET" env-default:"change-me-traintrack-secret"`
	SessionTTL         time.Duration `env:"SESSION_TTL" env-default:"24h"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`
	CatalogFile        string        `env:"CATALOG_FILE"`
	OpsAPIKey          string        `env:"OPS_API_KEY"`
	BcryptCost         int           `env:"BCRYPT_COST" env-default:"10"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func LoadEnv() (Env, error) {
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("config error: %w", err)
	}

	env.AppAddr = strings.TrimSpace(env.AppAddr)
	env.CatalogFile = strings.TrimSpace(env.CatalogFile)
	origins := env.CORSAllowedOrigins[:0]
	for _, o := range env.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	env.CORSAllowedOrigins = origins
	return env, nil
}

// EnvUsage describes every supported variable.
func EnvUsage() (string, error) {
	var env Env
	return cleanenv.GetDescription(&env, nil)
}
