package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"agenda/internal/record"
	"agenda/internal/validation"
)

func newTaskCmd(a *app, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage dated tasks",
	}

	var body, due string
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			t, err := a.agenda.AddTask(cmd.Context(), user, args[0], body, due)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task added: %s (due %s)\n", t.ID, t.Due)
			return nil
		},
	}
	add.Flags().StringVarP(&body, "body", "b", "", "Task details")
	add.Flags().StringVarP(&due, "due", "d", "", "Due date (YYYY-MM-DD)")
	_ = add.MarkFlagRequired("due")

	var (
		filter string
		asJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			tasks, err := a.agenda.Tasks(cmd.Context(), user, filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	list.Flags().StringVarP(&filter, "filter", "f", "", "Title filter (text or glob)")
	list.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	var title, editBody, editDue string
	edit := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			t, err := a.agenda.Task(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				t.Title = title
			}
			if cmd.Flags().Changed("body") {
				t.Body = editBody
			}
			if cmd.Flags().Changed("due") {
				t.Due = editDue
			}
			if _, err := a.agenda.EditTask(cmd.Context(), user, t.ID, t.Title, t.Body, t.Due); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task updated: %s\n", t.ID)
			return nil
		},
	}
	edit.Flags().StringVarP(&title, "title", "t", "", "New title")
	edit.Flags().StringVarP(&editBody, "body", "b", "", "New details")
	edit.Flags().StringVarP(&editDue, "due", "d", "", "New due date (YYYY-MM-DD)")

	rm := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			if err := a.agenda.DeleteTask(cmd.Context(), user, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task deleted: %s\n", args[0])
			return nil
		},
	}

	var upcoming bool
	on := &cobra.Command{
		Use:   "on [date]",
		Short: "List tasks due on a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if len(args) == 1 {
				d, err := validation.ParseDate("date", args[0])
				if err != nil {
					return err
				}
				day = d
			}
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			var tasks []record.Task
			if upcoming {
				tasks, err = a.agenda.Upcoming(cmd.Context(), user, day)
			} else {
				tasks, err = a.agenda.TasksOn(cmd.Context(), user, day)
			}
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	on.Flags().BoolVar(&upcoming, "upcoming", false, "Include every later day too")

	cmd.AddCommand(add, list, edit, rm, on)
	return cmd
}

func printTasks(w io.Writer, tasks []record.Task) {
	for _, t := range tasks {
		fmt.Fprintf(w, "%s  %s  %s\n", t.ID, t.Due, t.Title)
	}
}
