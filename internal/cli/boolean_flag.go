package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName              = "bool"
	booleanFlagTrueLiteral           = "true"
	booleanFlagAcceptedValuesListing = "true, false, yes, no, on, off, 1, 0"
	invalidBooleanValueFormat        = "invalid boolean value %q for --%s; accepted values: %s"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// booleanFlagValue is a pflag value accepting yes/no style literals.
type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, ok := booleanFlagLiterals[normalized]
	if !ok || value.target == nil {
		return fmt.Errorf(invalidBooleanValueFormat, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag adds a flag usable as "--name", "--name=no" or "--name no".
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, flagKey: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments joins "--name literal" pairs into "--name=literal"
// for boolean flags of command and its subcommands.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := collectFlagNames(command, func(flag *pflag.Flag) bool {
		return flag.Value.Type() == booleanFlagTypeName
	})
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == argumentTerminator {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := longFlagName(currentArgument)
		if _, isBoolean := booleanFlags[flagName]; isLongFlag && isBoolean && index+1 < len(arguments) {
			literal := strings.ToLower(strings.TrimSpace(arguments[index+1]))
			if _, valid := booleanFlagLiterals[literal]; valid {
				normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, arguments[index+1]))
				index++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

// collectFlagNames gathers the names of flags accepted by include across the command tree.
func collectFlagNames(command *cobra.Command, include func(*pflag.Flag) bool) map[string]struct{} {
	names := map[string]struct{}{}
	var visitCommand func(*cobra.Command)
	visitCommand = func(current *cobra.Command) {
		for _, flagSet := range []*pflag.FlagSet{current.PersistentFlags(), current.Flags()} {
			flagSet.VisitAll(func(flag *pflag.Flag) {
				if flag.Value != nil && include(flag) {
					names[flag.Name] = struct{}{}
				}
			})
		}
		for _, child := range current.Commands() {
			visitCommand(child)
		}
	}
	if command != nil {
		visitCommand(command)
	}
	return names
}
