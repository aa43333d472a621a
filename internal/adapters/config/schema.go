package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskFile represents the structure of a task file.
type TaskFile struct {
	Name          string            `yaml:"name"`
	Shell         string            `yaml:"shell"`
	Requires      []string          `yaml:"requires"`
	Before        []string          `yaml:"before"`
	Echo          bool              `yaml:"echo"`
	FailFast      *bool             `yaml:"fail_fast"`
	CheckExitCode *bool             `yaml:"check_exit_code"`
	ShouldFail    bool              `yaml:"should_fail"`
	Disabled      bool              `yaml:"disabled"`
	Timeout       *float64          `yaml:"timeout"`
	Sleep         float64           `yaml:"sleep"`
	Vars          map[string]string `yaml:"vars"`
	Commands      []CommandDTO      `yaml:"commands"`
}

// CommandDTO represents one command of a task. A plain string is a command
// with a single send string.
type CommandDTO struct {
	Command       stringList `yaml:"command"`
	Expect        stringList `yaml:"expect"`
	Timeout       *float64   `yaml:"timeout"`
	Echo          *bool      `yaml:"echo"`
	CheckExitCode *bool      `yaml:"check_exit_code"`
	ShouldFail    *bool      `yaml:"should_fail"`
}

// UnmarshalYAML accepts either a scalar or a mapping.
func (c *CommandDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = CommandDTO{Command: stringList{node.Value}}
		return nil
	}
	type plain CommandDTO
	return node.Decode((*plain)(c))
}

// SessionsFile represents the structure of a sessions file.
type SessionsFile struct {
	Sessions []SessionDTO `yaml:"sessions"`
}

// SessionDTO represents a session definition.
type SessionDTO struct {
	Name          string       `yaml:"name"`
	Spawn         argv         `yaml:"spawn"`
	Kind          string       `yaml:"kind"`
	Prompt        string       `yaml:"prompt"`
	Init          []CommandDTO `yaml:"init"`
	InitSleep     float64      `yaml:"init_sleep"`
	Timeout       float64      `yaml:"timeout"`
	ResultTimeout float64      `yaml:"result_timeout"`
	RespawnLimit  int          `yaml:"respawn_limit"`
}

// stringList is a sequence of strings that may also be written as one scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = stringList{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

// argv is a command line. A scalar is split on whitespace.
type argv []string

func (a *argv) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*a = strings.Fields(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}
