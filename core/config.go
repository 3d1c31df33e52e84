package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Addr               string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	DatabaseConfig struct {
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}
)

// NewConfig loads the app configuration from the environment.
// An optional `config/.env.<env>` file is loaded first (ignored if absent);
// any `<ENV>_`-prefixed environment variable overrides the defaults.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "CampusVoice")
	conf.SetDefault("secretKey", "x83=g$fu1^%ap#s)ehj0y&-vb+ql(mz57_wc29!dnr4kt6io*")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("jwtExpirationDelta", 24*time.Hour)
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseUri", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "campusvoice")
	conf.SetDefault("databaseConnectTimeout", 10*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:             env,
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		AppName:         conf.GetString("appName"),
		SecretKey:       conf.GetString("secretKey"),
		FrontendBaseURL: conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("appName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		SendgridAPIKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Addr:               conf.GetString("serverAddr"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
			ShutdownTimeout:    conf.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			URI:            conf.GetString("databaseUri"),
			Name:           conf.GetString("databaseName"),
			ConnectTimeout: conf.GetDuration("databaseConnectTimeout"),
		},
	}
}
