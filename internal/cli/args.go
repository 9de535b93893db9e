package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// positional validates required and optional positional arguments. Values
// are trimmed in place; a blank required value counts as missing. When rest
// is set any number of trailing arguments is accepted.
func positional(required, optional []string, rest bool) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
		for i, name := range required {
			if i >= len(args) || args[i] == "" {
				return usageErrorf("missing required argument <%s>", name)
			}
		}
		if max := len(required) + len(optional); !rest && len(args) > max {
			return usageErrorf("too many arguments: got %d, want at most %d", len(args), max)
		}
		return nil
	}
}

func req(names ...string) []string { return names }

func opt(names ...string) []string { return names }

// arg returns args[i], or "" when absent.
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// tail joins args[i:] with spaces, so profile names need no quoting.
func tail(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return strings.TrimSpace(strings.Join(args[i:], " "))
}

// positiveInt parses a positive integer argument.
func positiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, usageErrorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

// groupCmd is the RunE of commands that only hold subcommands.
func groupCmd(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unknown operation %q for %q", args[0], cmd.CommandPath())
	}
	return cmd.Help()
}
