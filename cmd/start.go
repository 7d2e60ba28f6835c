package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"timepunch/timeentry"
	"timepunch/timerctl"
)

var (
	startUser        string
	startProject     string
	startProjectID   string
	startTask        string
	startTaskID      string
	startDescription string
	startBillable    bool
	startRate        float64
	startDBPath      string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a timer for a user",
	Long: `Start a running time entry for a user.

The entry opens on the remote service when it is reachable. When it is not,
the timer still starts: the entry is committed locally with a provisional id
and synced later with "timepunch sync".`,
	Example: `
  # Start a billable timer
  timepunch start --user u-17 --project "Website Redesign" --description "wireframes" --billable --rate 50

  # Start against a known project id
  timepunch start --user u-17 --project-id p-204 --description "code review"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(startDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		if _, err := engine.attachActiveSession(startUser); err != nil {
			return err
		}

		entry, err := engine.controller.Start(cmd.Context(), timerctl.StartParams{
			UserID:      startUser,
			Project:     refFromFlags(startProjectID, startProject),
			Task:        refFromFlags(startTaskID, startTask),
			Description: startDescription,
			Billable:    startBillable,
			HourlyRate:  startRate,
		})
		if err != nil {
			return err
		}

		mode := "online"
		if entry.PendingSync {
			mode = "offline, will sync later"
		}
		fmt.Printf("Timer started. Entry: %s, Project: %s, Mode: %s\n", entry.ID, entry.ProjectName(), mode)
		return nil
	},
}

// refFromFlags builds a reference from an optional id and an optional name.
func refFromFlags(id, name string) timeentry.Ref {
	switch {
	case id != "" && name != "":
		return timeentry.RefNamed(id, name)
	case id != "":
		return timeentry.RefID(id)
	case name != "":
		return timeentry.Ref{Name: name, Resolved: true}
	default:
		return timeentry.Ref{}
	}
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVarP(&startUser, "user", "u", "", "User id the timer belongs to")
	startCmd.Flags().StringVarP(&startProject, "project", "p", "", "Project name")
	startCmd.Flags().StringVar(&startProjectID, "project-id", "", "Project id on the remote service")
	startCmd.Flags().StringVar(&startTask, "task", "", "Task name (optional)")
	startCmd.Flags().StringVar(&startTaskID, "task-id", "", "Task id on the remote service (optional)")
	startCmd.Flags().StringVarP(&startDescription, "description", "d", "", "What is being worked on")
	startCmd.Flags().BoolVar(&startBillable, "billable", false, "Mark the entry as billable")
	startCmd.Flags().Float64Var(&startRate, "rate", 0, "Hourly rate override (defaults to the user's directory rate)")
	startCmd.Flags().StringVar(&startDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")

	_ = startCmd.MarkFlagRequired("user")
	_ = startCmd.MarkFlagRequired("description")
}
