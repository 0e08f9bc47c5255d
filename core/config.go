package core

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		DebugAddress              string
		Host                      string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		RateLimitRPS              float64
		RateLimitBurst            int
		// TrustProxy keys rate limits on X-Real-IP / X-Forwarded-For. Only enable behind a proxy that sets them.
		TrustProxy     bool
		DisableReqLogs bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
		CacheTTL time.Duration
	}

	CalendarConfig struct {
		// Adjustment shifts Hijri results by whole days (moon-sighting correction).
		Adjustment int
	}

	Config struct {
		Env              string
		Build            string
		AppName          string
		Debug            bool
		TestMode         bool
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Calendar CalendarConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the configuration from defaults, an optional `.env.<env>` file and ILM_* environment variables.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Ilm")
	v.SetDefault("secretKey", "k7$w!2pqz0-ilm-dev-secret-(change-me)-9f#ad1")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail.name", "Ilm")
	v.SetDefault("defaultFromEmail.address", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.rateLimitRPS", 5.0)
	v.SetDefault("server.rateLimitBurst", 20)
	v.SetDefault("server.trustProxy", false)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ilm")
	v.SetDefault("database.user", "ilm")
	v.SetDefault("database.password", "ilm")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cacheTTL", 10*time.Minute)

	v.SetDefault("calendar.adjustment", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := ".env." + strings.ToLower(env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			panic(fmt.Sprintf("config.godotenv(%s): %v", dotEnvPath, err))
		}
	}

	v.SetEnvPrefix("ILM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("defaultFromEmail.name"),
			Address: v.GetString("defaultFromEmail.address"),
		},
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debugAddress"),
			Host:                      v.GetString("server.host"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			RateLimitRPS:              v.GetFloat64("server.rateLimitRPS"),
			RateLimitBurst:            v.GetInt("server.rateLimitBurst"),
			TrustProxy:                v.GetBool("server.trustProxy"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CacheTTL: v.GetDuration("redis.cacheTTL"),
		},
		Calendar: CalendarConfig{
			Adjustment: clampAdjustment(v.GetInt("calendar.adjustment")),
		},
	}
	return conf
}

func clampAdjustment(days int) int {
	if days > 2 {
		return 2
	}
	if days < -2 {
		return -2
	}
	return days
}
