package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	argumentTerminator  = "--"
	longFlagPrefix      = "--"
	stringArrayTypeName = "stringArray"
)

// normalizeArguments prepares raw process arguments for cobra parsing.
func normalizeArguments(command *cobra.Command, arguments []string) []string {
	listFlags := collectFlagNames(command, func(flag *pflag.Flag) bool {
		return flag.Value.Type() == stringArrayTypeName
	})
	return normalizeBooleanFlagArguments(command, normalizeListFlagArguments(arguments, listFlags))
}

// normalizeListFlagArguments rewrites "--name a b" into "--name=a --name=b".
// Values are consumed until the next token that looks like a flag or until
// "--". A list flag followed by no values contributes nothing.
func normalizeListFlagArguments(arguments []string, listFlags map[string]struct{}) []string {
	if len(listFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		currentArgument := arguments[index]
		if currentArgument == argumentTerminator {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := longFlagName(currentArgument)
		if _, isList := listFlags[flagName]; !isLongFlag || !isList {
			normalized = append(normalized, currentArgument)
			index++
			continue
		}
		index++
		for index < len(arguments) && !looksLikeFlag(arguments[index]) {
			normalized = append(normalized, longFlagPrefix+flagName+"="+arguments[index])
			index++
		}
	}
	return normalized
}

// longFlagName returns the name of a "--name" token without an inline value.
func longFlagName(argument string) (string, bool) {
	if !strings.HasPrefix(argument, longFlagPrefix) || argument == argumentTerminator || strings.Contains(argument, "=") {
		return "", false
	}
	return strings.TrimPrefix(argument, longFlagPrefix), true
}

func looksLikeFlag(argument string) bool {
	return len(argument) > 1 && strings.HasPrefix(argument, "-")
}
