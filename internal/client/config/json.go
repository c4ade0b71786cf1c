package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Pointer fields tell absent
// keys apart from zero values.
type JsonConfig struct {
	APIBaseURL          string          `json:"api_base_url"`
	Transport           string          `json:"transport"`
	GRPCAddr            string          `json:"grpc_addr"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	VaultPath           string          `json:"vault_path"`
	DeviceKeyPath       string          `json:"device_key_path"`
	LandingRoute        string          `json:"landing_route"`
	LogLevel            string          `json:"log_level"`
	LogFormat           string          `json:"log_format"`
	UploadPictures      *bool           `json:"upload_pictures"`
	S3Region            string          `json:"s3_region"`
	S3AccessKey         string          `json:"s3_access_key"`
	S3SecretKey         string          `json:"s3_secret_key"`
	S3BaseEndpoint      string          `json:"s3_base_endpoint"`
	S3Bucket            string          `json:"s3_bucket"`
	S3PublicBaseURL     string          `json:"s3_public_base_url"`
}

// parseJson overlays Config with values loaded from the JSON file given via
// -c or -config. Keys missing from the file leave the current value alone.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.Transport, jc.Transport)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	setString(&cfg.VaultPath, jc.VaultPath)
	setString(&cfg.DeviceKeyPath, jc.DeviceKeyPath)
	setString(&cfg.LandingRoute, jc.LandingRoute)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.UploadPictures != nil {
		cfg.UploadPictures = *jc.UploadPictures
	}
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
