package domain

import (
	"maps"
	"regexp"
	"strings"

	"dario.cat/mergo"
	"go.trai.ch/zerr"
)

// placeholderPattern matches `${{ name }}` where name is made of letters,
// digits, `_`, `-` and whitespace.
var placeholderPattern = regexp.MustCompile(`\$\{\{([\sa-zA-Z0-9_\-]*)\}\}`)

// MergeVars layers variable maps by precedence: override > task-local > global.
// The inputs are left untouched.
func MergeVars(global, task, override map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(global)+len(task)+len(override))
	maps.Copy(merged, global)

	for _, layer := range []map[string]string{task, override} {
		if len(layer) == 0 {
			continue
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, zerr.Wrap(err, "failed to merge variables")
		}
	}

	return merged, nil
}

// ResolveVars replaces every placeholder in text with its value from vars.
// A placeholder naming an unknown variable is an error. Text without
// placeholders is returned unchanged.
func ResolveVars(text string, vars map[string]string) (string, error) {
	var missing string

	resolved := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := lookupVar(vars, name); ok {
			return v
		}
		if missing == "" {
			missing = name
		}
		return match
	})

	if missing != "" {
		return "", zerr.With(ErrUnresolvedVariable, "variable", strings.TrimSpace(missing))
	}
	return resolved, nil
}

func lookupVar(vars map[string]string, name string) (string, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.TrimSpace(name)]
	return v, ok
}

// ResolveVars expands the placeholders in every send string of the task.
// Global variables are overridden by the task's own, which are overridden by override.
func (t *Task) ResolveVars(global, override map[string]string) error {
	vars, err := MergeVars(global, t.Vars, override)
	if err != nil {
		return zerr.With(err, "task", t.Name.String())
	}

	for i := range t.Commands {
		send := make([]string, len(t.Commands[i].Send))
		for j, text := range t.Commands[i].Send {
			resolved, err := ResolveVars(text, vars)
			if err != nil {
				return zerr.With(err, "task", t.Name.String())
			}
			send[j] = resolved
		}
		t.Commands[i].Send = send
	}

	return nil
}
