package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/rig/internal/app"
)

// addRunFlags registers the flags shared by run and plan.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("tasks", "t", nil, "Directories searched for task files, later ones override earlier ones")
	f.StringP("sessions", "s", "", "YAML file with session definitions")
	f.Bool("no-default-sessions", false, "Do not register the built-in host, renode and target sessions")
	f.String("test", "", "Test body added as the task \"test\", YAML or one command per line")
	f.StringArray("var", nil, "Global variable as KEY=VALUE")
	f.StringArray("set", nil, "Task variable as TASK.KEY=VALUE")
	f.StringSlice("enable", nil, "Enable the named tasks")
	f.StringSlice("disable", nil, "Disable the named tasks")
	f.StringSlice("delete", nil, "Remove the named tasks")
}

func runOptions(cmd *cobra.Command) app.RunOptions {
	f := cmd.Flags()
	taskDirs, _ := f.GetStringSlice("tasks")
	sessions, _ := f.GetString("sessions")
	noDefaults, _ := f.GetBool("no-default-sessions")
	test, _ := f.GetString("test")
	vars, _ := f.GetStringArray("var")
	sets, _ := f.GetStringArray("set")
	enable, _ := f.GetStringSlice("enable")
	disable, _ := f.GetStringSlice("disable")
	del, _ := f.GetStringSlice("delete")

	return app.RunOptions{
		TaskDirs:          taskDirs,
		SessionsFile:      sessions,
		NoDefaultSessions: noDefaults,
		TestFile:          test,
		Vars:              vars,
		Sets:              sets,
		Enable:            enable,
		Disable:           disable,
		Delete:            del,
	}
}
