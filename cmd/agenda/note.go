package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"agenda/internal/record"
)

func newNoteCmd(a *app, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	var body string
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			n, err := a.agenda.AddNote(cmd.Context(), user, args[0], body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note added: %s\n", n.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&body, "body", "b", "", "Note body")

	var (
		filter string
		asJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			notes, err := a.agenda.Notes(cmd.Context(), user, filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			for _, n := range notes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", n.ID, n.Title)
			}
			return nil
		},
	}
	list.Flags().StringVarP(&filter, "filter", "f", "", "Title filter (text or glob)")
	list.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	var title, editBody string
	edit := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change the title or body of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			n, err := a.agenda.Note(cmd.Context(), user, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				n.Title = title
			}
			if cmd.Flags().Changed("body") {
				n.Body = editBody
			}
			if _, err := a.agenda.EditNote(cmd.Context(), user, n.ID, n.Title, n.Body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", n.ID)
			return nil
		},
	}
	edit.Flags().StringVarP(&title, "title", "t", "", "New title")
	edit.Flags().StringVarP(&editBody, "body", "b", "", "New body")

	rm := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(cmd, opts)
			if err != nil {
				return err
			}
			if err := a.agenda.DeleteNote(cmd.Context(), user, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, edit, rm)
	return cmd
}

func writeJSON[T record.Note | record.Task](w io.Writer, v []T) error {
	if v == nil {
		v = []T{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
