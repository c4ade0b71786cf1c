package config

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GAUTH_"

// parseEnv overlays Config with GAUTH_* variables. Variables come from the
// .env file named by -e/-env, if any, and from the process environment,
// which wins on conflicts. Malformed values panic.
func parseEnv(cfg *Config, args []string, lookupEnv func(string) (string, bool)) {
	file := map[string]string{}
	if path := flagx.EnvFileFlags(args); path != "" {
		m, err := godotenv.Read(path)
		if err != nil {
			panic(err)
		}
		file = m
	}

	get := func(name string) (string, bool) {
		key := envPrefix + name
		if lookupEnv != nil {
			if v, ok := lookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := file[key]
		return v, ok
	}

	str := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				panic(err)
			}
			*dst = b
		}
	}

	str("API_URL", &cfg.APIBaseURL)
	str("TRANSPORT", &cfg.Transport)
	str("GRPC_ADDR", &cfg.GRPCAddr)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	str("VAULT_PATH", &cfg.VaultPath)
	str("DEVICE_KEY_PATH", &cfg.DeviceKeyPath)
	str("LANDING_ROUTE", &cfg.LandingRoute)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	boolean("UPLOAD_PICTURES", &cfg.UploadPictures)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_PUBLIC_BASE_URL", &cfg.S3PublicBaseURL)
}
