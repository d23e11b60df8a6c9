package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/readmetree/internal/types"
)

const (
	actionFlagTypeName            = "action"
	copyFlagTypeName              = "copy"
	invalidActionFlagValueMessage = "invalid action '%s'; accepted values: print, copy, file, insert"
	invalidCopyFlagValueMessage   = "invalid copy flag value '%s'"
)

var (
	supportedActions = map[string]struct{}{
		types.ActionPrint:  {},
		types.ActionCopy:   {},
		types.ActionFile:   {},
		types.ActionInsert: {},
	}
	trueCopyFlagLiterals = map[string]struct{}{
		"":     {},
		"true": {},
		"t":    {},
		"1":    {},
		"yes":  {},
		"y":    {},
	}
	falseCopyFlagLiterals = map[string]struct{}{
		"false": {},
		"f":     {},
		"0":     {},
		"no":    {},
		"n":     {},
	}
	treeCommandNames = map[string]struct{}{
		types.CommandASCII:    {},
		asciiAlias:            {},
		types.CommandMarkdown: {},
		markdownAlias:         {},
	}
)

func isSupportedAction(action string) bool {
	_, supported := supportedActions[action]
	return supported
}

func isTreeCommandName(argument string) bool {
	normalized := strings.ToLower(strings.TrimSpace(argument))
	_, known := treeCommandNames[normalized]
	return known
}

func interpretCopyFlagLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if _, matches := trueCopyFlagLiterals[normalized]; matches {
		return true, true
	}
	if _, matches := falseCopyFlagLiterals[normalized]; matches {
		return false, true
	}
	return false, false
}

// actionFlagValue accepts only the known sink names.
type actionFlagValue struct {
	target *string
}

func (value *actionFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf(invalidActionFlagValueMessage, input)
	}
	normalized := strings.ToLower(strings.TrimSpace(input))
	if !isSupportedAction(normalized) {
		return fmt.Errorf(invalidActionFlagValueMessage, input)
	}
	*value.target = normalized
	return nil
}

func (value *actionFlagValue) String() string {
	if value == nil || value.target == nil {
		return types.ActionPrint
	}
	return *value.target
}

func (value *actionFlagValue) Type() string {
	return actionFlagTypeName
}

// copyFlagValue is the --copy shortcut for --action copy. A false literal restores print.
type copyFlagValue struct {
	target *string
}

func (value *copyFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	booleanValue, ok := interpretCopyFlagLiteral(input)
	if !ok {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	if booleanValue {
		*value.target = types.ActionCopy
	} else if *value.target == types.ActionCopy {
		*value.target = types.ActionPrint
	}
	return nil
}

func (value *copyFlagValue) String() string {
	if value == nil || value.target == nil || *value.target != types.ActionCopy {
		return "false"
	}
	return "true"
}

func (value *copyFlagValue) Type() string {
	return copyFlagTypeName
}

// registerActionFlags binds --action and its --copy shortcut to the same target.
func registerActionFlags(flagSet *pflag.FlagSet, target *string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = types.ActionPrint
	flagSet.Var(&actionFlagValue{target: target}, actionFlagName, actionFlagDescription)
	flagSet.Var(&copyFlagValue{target: target}, copyFlagName, copyFlagDescription)
	if lookup := flagSet.Lookup(copyFlagName); lookup != nil {
		lookup.NoOptDefVal = "true"
	}
}

func normalizeCopyFlagArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	commandContext := false
	positionalOnly := false
	for index < len(arguments) {
		if positionalOnly {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, current)
			commandContext = true
			positionalOnly = true
			index++
			continue
		}
		if current == "--"+copyFlagName {
			nextIndex := index + 1
			if nextIndex >= len(arguments) || strings.HasPrefix(arguments[nextIndex], "-") {
				normalized = append(normalized, fmt.Sprintf("--%s=true", copyFlagName))
				index++
				continue
			}
			nextValue := arguments[nextIndex]
			if booleanValue, ok := interpretCopyFlagLiteral(nextValue); ok {
				normalized = append(normalized, fmt.Sprintf("--%s=%t", copyFlagName, booleanValue))
				index += 2
				continue
			}
			if commandContext || isTreeCommandName(nextValue) {
				normalized = append(normalized, fmt.Sprintf("--%s=true", copyFlagName))
				index++
				continue
			}
			normalized = append(normalized, fmt.Sprintf("--%s=%s", copyFlagName, nextValue))
			index += 2
			continue
		}
		normalized = append(normalized, current)
		if !commandContext && !strings.HasPrefix(current, "-") && isTreeCommandName(current) {
			commandContext = true
		}
		index++
	}
	return normalized
}
