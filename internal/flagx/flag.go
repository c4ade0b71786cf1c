// Package flagx lets each config loader parse only the flags it owns out of
// the shared os.Args, so loaders can run in sequence without tripping over
// each other's flags.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args made of allowedFlags and their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      -config=conf.json
//
// A value is only taken from the next argument when it does not itself look
// like a flag.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags extracts the JSON config path given via -c or -config.
// Returns "" when neither is present.
func JsonConfigFlags(args []string) string {
	return stringFlag(args, "config", "c", "path to JSON config file")
}

// EnvFileFlags extracts the dotenv file path given via -e or -env.
// Returns "" when neither is present.
func EnvFileFlags(args []string) string {
	return stringFlag(args, "env", "e", "path to .env file")
}

func stringFlag(args []string, long, short, usage string) string {
	var value string

	filtered := FilterArgs(args, []string{"-" + short, "-" + long})

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&value, long, "", usage)
	fs.StringVar(&value, short, "", usage+" (short)")
	_ = fs.Parse(filtered)

	return value
}
