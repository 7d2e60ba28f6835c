package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"timepunch/internal/durcalc"
	"timepunch/timerctl"
)

var (
	addUser        string
	addProject     string
	addProjectID   string
	addTask        string
	addTaskID      string
	addDescription string
	addDuration    string
	addBillable    bool
	addRate        float64
	addDBPath      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a completed entry from a manual duration",
	Long: `Record a completed time entry without running a timer.

The duration is given as HH:MM or HH:MM:SS and counted back from now to
derive the start time. Manual entries go through the same offline fallback
as timers.`,
	Example: `
  # Two and a half hours of billable work
  timepunch add --user u-17 --project "Website Redesign" --description "API integration" --duration 2:30 --billable --rate 40
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(addDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		entry, err := engine.controller.ManualEntry(cmd.Context(), timerctl.ManualParams{
			UserID:       addUser,
			Project:      refFromFlags(addProjectID, addProject),
			Task:         refFromFlags(addTaskID, addTask),
			Description:  addDescription,
			DurationText: addDuration,
			Billable:     addBillable,
			HourlyRate:   addRate,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Entry recorded. ID: %s, Duration: %s", entry.ID, durcalc.FormatDuration(entry.Duration))
		if entry.Billable {
			fmt.Printf(", Amount: %.2f", entry.TotalAmount)
		}
		if entry.PendingSync {
			fmt.Print(", Pending sync: yes")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addUser, "user", "u", "", "User id the entry belongs to")
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "Project name")
	addCmd.Flags().StringVar(&addProjectID, "project-id", "", "Project id on the remote service")
	addCmd.Flags().StringVar(&addTask, "task", "", "Task name (optional)")
	addCmd.Flags().StringVar(&addTaskID, "task-id", "", "Task id on the remote service (optional)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "What was worked on")
	addCmd.Flags().StringVar(&addDuration, "duration", "", "Worked duration as HH:MM or HH:MM:SS")
	addCmd.Flags().BoolVar(&addBillable, "billable", false, "Mark the entry as billable")
	addCmd.Flags().Float64Var(&addRate, "rate", 0, "Hourly rate override (defaults to the user's directory rate)")
	addCmd.Flags().StringVar(&addDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")

	_ = addCmd.MarkFlagRequired("user")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("duration")
}
