package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"

	"github.com/deepnoodle-ai/kut/object"
)

var red = color.New(color.FgRed).SprintFunc()

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isTerminalIO() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutput(result object.Object, format string) (string, error) {
	switch strings.ToLower(format) {
	case "":
		// With an unspecified format, we'll try to do the most helpful thing:
		//  1. If the result is nil, we want to print nothing
		//  2. If the result marshals to JSON, we'll print that
		//  3. Otherwise, we'll print the result's inspected form
		if result == object.Nil {
			return "", nil
		}
		output, err := getOutputJSON(result)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		output, err := getOutputJSON(result)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		return result.Inspect(), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(result object.Object) ([]byte, error) {
	value := result.Interface()
	switch result.(type) {
	case *object.Closure, *object.External, *object.Cell:
		return nil, fmt.Errorf("cannot marshal %s to json", result.Type())
	}
	if color.NoColor {
		return json.MarshalIndent(value, "", "  ")
	}
	return prettyjson.Marshal(value)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if cfg.GetBool("no-color") {
		color.NoColor = true
	}
}
