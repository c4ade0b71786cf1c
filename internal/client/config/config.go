package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/navigation"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the gauth CLI.
//
// Units: RequestTimeout and OnlineCheckInterval are time.Duration values.
type Config struct {
	APIBaseURL          string
	Transport           string
	GRPCAddr            string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration

	VaultPath     string
	DeviceKeyPath string
	LandingRoute  string

	LogLevel  string
	LogFormat string

	UploadPictures  bool
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3BaseEndpoint  string
	S3Bucket        string
	S3PublicBaseURL string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.Transport = TransportHTTP
	c.GRPCAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second

	dir := defaultDataDir()
	c.VaultPath = filepath.Join(dir, "vault.db")
	c.DeviceKeyPath = filepath.Join(dir, "device.key")
	c.LandingRoute = "/"

	c.LogLevel = "info"
	c.LogFormat = "text"

	c.UploadPictures = false
	c.S3Region = "us-east-1"
	c.S3Bucket = "gauth-avatars"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP:
		if c.APIBaseURL == "" {
			return fmt.Errorf("api base url is required for %s transport", c.Transport)
		}
	case TransportGRPC:
		if c.GRPCAddr == "" {
			return fmt.Errorf("grpc address is required for %s transport", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if err := validateLanding(c.LandingRoute); err != nil {
		return err
	}
	if c.UploadPictures && c.S3Bucket == "" {
		return fmt.Errorf("s3 bucket is required when picture upload is enabled")
	}
	return nil
}

// validateLanding rejects routes the authenticated-user guard would
// redirect away from, which would loop after every sign-in.
func validateLanding(route string) error {
	if !strings.HasPrefix(route, "/") {
		return fmt.Errorf("landing route must start with /, got %q", route)
	}
	switch route {
	case navigation.RouteLogin, navigation.RouteRegister:
		return fmt.Errorf("landing route %q is an auth page", route)
	}
	return nil
}

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig() *Config {
	return Load(os.Args[1:], os.LookupEnv)
}

// Load constructs a Config, applies defaults, then overlays values from the
// .env file and environment, JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones. Invalid input
// panics.
func Load(args []string, lookupEnv func(string) (string, bool)) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, args, lookupEnv)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gauth")
	}
	return ".gauth"
}
