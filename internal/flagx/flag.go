// Package flagx lets each configuration stage parse only the flags it
// owns: arguments are filtered down to an allow-list before being handed
// to a flag.FlagSet, so stages do not trip over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags (and their values) from args,
// dropping everything else: unknown flags, their values, and positional
// arguments. An allowed flag in "-f value" form keeps the following
// token; "-flag=value" is kept as one token.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, hasValue := strings.Cut(arg, "="); hasValue && strings.HasPrefix(name, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ExcludeArgs is the complement of FilterArgs: it returns args with the
// listed flags removed. Flags in valueFlags consume the following token
// as their value; flags in boolFlags stand alone. Either kind is also
// recognized in "-flag=value" form.
func ExcludeArgs(args []string, valueFlags, boolFlags []string) []string {
	withValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		withValue[f] = struct{}{}
	}
	bare := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		bare[f] = struct{}{}
	}

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, hasValue := strings.Cut(arg, "="); hasValue && strings.HasPrefix(name, "-") {
			if _, ok := withValue[name]; ok {
				continue
			}
			if _, ok := bare[name]; ok {
				continue
			}
			kept = append(kept, arg)
			continue
		}

		if _, ok := withValue[arg]; ok {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		if _, ok := bare[arg]; ok {
			continue
		}
		kept = append(kept, arg)
	}
	return kept
}

// JSONConfigFlags extracts the config file path given via -c or -config.
// Returns "" when neither flag is present.
func JSONConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "path to config file")
	fs.StringVar(&config, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return config
}
