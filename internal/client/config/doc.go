// Package config loads runtime configuration for the gauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. GAUTH_* variables from the .env file selected via -e or -env, then
//     from the process environment.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the HTTP API
//	-t string   transport: http or grpc
//	-g string   address:port of the gRPC endpoint
//	-i int      online status check interval (seconds)
//	-d string   path to the local vault database
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080",
//	  "transport": "http",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "upload_pictures": false
//	}
//
// # Environment
//
//	GAUTH_API_URL, GAUTH_TRANSPORT, GAUTH_GRPC_ADDR, GAUTH_REQUEST_TIMEOUT,
//	GAUTH_ONLINE_CHECK_INTERVAL, GAUTH_VAULT_PATH, GAUTH_DEVICE_KEY_PATH,
//	GAUTH_LANDING_ROUTE, GAUTH_LOG_LEVEL, GAUTH_LOG_FORMAT,
//	GAUTH_UPLOAD_PICTURES, GAUTH_S3_REGION, GAUTH_S3_ACCESS_KEY,
//	GAUTH_S3_SECRET_KEY, GAUTH_S3_BASE_ENDPOINT, GAUTH_S3_BUCKET,
//	GAUTH_S3_PUBLIC_BASE_URL
//
// Loading panics on malformed input; the CLI treats configuration errors as
// fatal at startup.
package config
