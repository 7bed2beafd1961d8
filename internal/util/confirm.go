// internal/util/confirm.go
package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// AssumeYesEnv is the environment variable that bypasses interactive
// confirmation for every destructive or appending operation.
const AssumeYesEnv = "DINERO_ASSUME_YES"

// NonInteractive reports whether confirmation prompts should be skipped.
func NonInteractive() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(AssumeYesEnv)))
	return v == "1" || v == "true" || v == "yes"
}

// Confirm asks the operator a yes/no question on the terminal and returns
// their answer. An empty answer means no.
func Confirm(question string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, question)
}

// ConfirmFrom is Confirm with injectable streams for testing.
func ConfirmFrom(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
