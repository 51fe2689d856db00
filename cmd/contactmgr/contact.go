package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/contact-registry/internal/registry"
)

func newContactCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "contact", Short: "Contact operations"}
	cmd.AddCommand(newContactAddCmd(a))
	cmd.AddCommand(newContactFindCmd(a))
	cmd.AddCommand(newContactGetCmd(a))
	cmd.AddCommand(newContactNoteCmd(a))
	return cmd
}

func newContactAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME NOTES",
		Short: "Add a contact and print its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, reg *registry.Registry) error {
				id, err := reg.AddContact(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
}

func newContactFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find [SUBSTRING]",
		Short: "List contacts whose name contains SUBSTRING (all when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			substring := ""
			if len(args) == 1 {
				substring = args[0]
			}
			return a.run(cmd, false, func(ctx context.Context, reg *registry.Registry) error {
				return printContacts(cmd.OutOrStdout(), reg.FindContactsByName(ctx, substring))
			})
		},
	}
}

func newContactGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID...",
		Short: "Show the contacts with the given ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return a.run(cmd, false, func(ctx context.Context, reg *registry.Registry) error {
				contacts, err := reg.FindContactsByIDs(ctx, ids...)
				if err != nil {
					return err
				}
				return printContacts(cmd.OutOrStdout(), contacts)
			})
		},
	}
}

func newContactNoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "note ID TEXT",
		Short: "Append notes to a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, true, func(ctx context.Context, reg *registry.Registry) error {
				contact, err := reg.AddContactNotes(ctx, id, args[1])
				if err != nil {
					return err
				}
				return printContacts(cmd.OutOrStdout(), []*registry.Contact{contact})
			})
		},
	}
}
