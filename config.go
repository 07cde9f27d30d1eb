package main

// Config holds user-level defaults loaded from a .lyraconfig.yaml file in the
// current directory. Command-line flags always take precedence: a flag's
// SetFlags call uses the loaded config value as its default, so passing the
// flag explicitly still overrides it.

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the decoded shape of .lyraconfig.yaml.
type Config struct {
	// Lenient mirrors --lenient: restore pre-strict scanning across run/repl/
	// cRepl/runC unless overridden on the command line.
	Lenient bool `yaml:"lenient"`
	// Optimize mirrors --optimize on runC/cRepl: run the peephole optimizer
	// over compiled bytecode before executing it.
	Optimize bool `yaml:"optimize"`
	// HistoryFile is where the readline-backed REPLs persist command history
	// across sessions. Empty disables history persistence.
	HistoryFile string `yaml:"historyFile"`
}

const configFileName = ".lyraconfig.yaml"

// loadConfig reads .lyraconfig.yaml from the current directory. A missing
// file is not an error: it yields the zero Config (every default off).
func loadConfig() *Config {
	cfg := &Config{}
	data, err := os.ReadFile(configFileName)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg
	}
	return cfg
}
