package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the HTTP API
//	-t string   transport: http or grpc
//	-g string   address and port of the gRPC endpoint
//	-i int      online check interval in seconds
//	-d string   path to the local vault database
//
// The args are filtered to the flags above with flagx.FilterArgs, so -c and
// -e handled by the other loaders do not interfere.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-g", "-i", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the HTTP API")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport (http|grpc)")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "address and port of the gRPC endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.VaultPath, "d", cfg.VaultPath, "path to the local vault database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
}
