package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"timepunch/remote"
)

var (
	editID          string
	editDescription string
	editProject     string
	editProjectID   string
	editTask        string
	editTaskID      string
	editBillable    bool
	editRate        float64
	editDBPath      string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit fields of a recorded entry",
	Long: `Edit an existing time entry.

Only the flags you pass change; everything else stays as recorded. Edits go
to the remote service when it is reachable and are queued for the next sync
otherwise.`,
	Example: `
  # Fix a description
  timepunch edit --id srv-204 --description "code review (PR 1182)"

  # Flip an entry to billable at a rate
  timepunch edit --id srv-204 --billable --rate 50
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := remote.UpdateFields{}
		flags := cmd.Flags()
		if flags.Changed("description") {
			fields.Description = &editDescription
		}
		if flags.Changed("project") || flags.Changed("project-id") {
			ref := refFromFlags(editProjectID, editProject)
			fields.Project = &ref
		}
		if flags.Changed("task") || flags.Changed("task-id") {
			ref := refFromFlags(editTaskID, editTask)
			fields.Task = &ref
		}
		if flags.Changed("billable") {
			fields.Billable = &editBillable
		}
		if flags.Changed("rate") {
			fields.HourlyRate = &editRate
		}
		if fields == (remote.UpdateFields{}) {
			return errors.New("nothing to change; pass at least one field flag")
		}

		engine, err := buildEngine(editDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		entry, err := engine.queue.UpdateEntry(cmd.Context(), editID, fields)
		if err != nil {
			return err
		}

		mode := "online"
		if entry.PendingSync {
			mode = "offline, will sync later"
		}
		fmt.Printf("Entry %s updated. Mode: %s\n", entry.ID, mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editID, "id", "", "Entry id to edit")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVarP(&editProject, "project", "p", "", "New project name")
	editCmd.Flags().StringVar(&editProjectID, "project-id", "", "New project id on the remote service")
	editCmd.Flags().StringVar(&editTask, "task", "", "New task name")
	editCmd.Flags().StringVar(&editTaskID, "task-id", "", "New task id on the remote service")
	editCmd.Flags().BoolVar(&editBillable, "billable", false, "Mark the entry as billable (or not, with --billable=false)")
	editCmd.Flags().Float64Var(&editRate, "rate", 0, "New hourly rate")
	editCmd.Flags().StringVar(&editDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")

	_ = editCmd.MarkFlagRequired("id")
}
