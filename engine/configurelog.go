package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configureLogMessage is one message-v1 document appended to
// CMakeConfigureLog.yaml by message(CONFIGURE_LOG ...) (spec.md §6).
type configureLogMessage struct {
	Kind      string   `yaml:"kind"`
	Backtrace []string `yaml:"backtrace"`
	Checks    []string `yaml:"checks"`
	Message   string   `yaml:"message"`
}

type configureLogDocument struct {
	Events []configureLogMessage `yaml:"events"`
}

// AppendConfigureLog appends one YAML document to
// <binaryDir>/CMakeFiles/CMakeConfigureLog.yaml.
func AppendConfigureLog(binaryDir, message string, backtrace, checks []string) error {
	dir := filepath.Join(binaryDir, "CMakeFiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "CMakeConfigureLog.yaml")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	doc := configureLogDocument{Events: []configureLogMessage{{
		Kind:      "message-v1",
		Backtrace: backtrace,
		Checks:    checks,
		Message:   message,
	}}}
	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing configure log: %w", err)
	}
	return nil
}
