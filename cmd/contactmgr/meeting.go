package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/contact-registry/internal/registry"
)

func newMeetingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "meeting", Short: "Meeting operations"}
	cmd.AddCommand(newMeetingAddFutureCmd(a))
	cmd.AddCommand(newMeetingAddPastCmd(a))
	cmd.AddCommand(newMeetingLookupCmd(a, "get", "Show a meeting whatever its date", lookupAny))
	cmd.AddCommand(newMeetingLookupCmd(a, "past", "Show a meeting that has taken place", lookupPast))
	cmd.AddCommand(newMeetingLookupCmd(a, "future", "Show a meeting that is still ahead", lookupFuture))
	cmd.AddCommand(newMeetingOnCmd(a))
	cmd.AddCommand(newMeetingNotesCmd(a))
	cmd.AddCommand(newMeetingForCmd(a))
	return cmd
}

// participantsFor resolves contact ids to the stored contacts.
func participantsFor(ctx context.Context, reg *registry.Registry, args []string) ([]*registry.Contact, error) {
	ids, err := parseIDs(args)
	if err != nil {
		return nil, err
	}
	return reg.FindContactsByIDs(ctx, ids...)
}

func newMeetingAddFutureCmd(a *app) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "add-future --at DATE CONTACT_ID...",
		Short: "Schedule a meeting after now and print its id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(at)
			if err != nil {
				return err
			}
			return a.run(cmd, true, func(ctx context.Context, reg *registry.Registry) error {
				participants, err := participantsFor(ctx, reg, args)
				if err != nil {
					return err
				}
				id, err := reg.AddFutureMeeting(ctx, participants, date)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "meeting date in RFC 3339 (required)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newMeetingAddPastCmd(a *app) *cobra.Command {
	var at, notes string

	cmd := &cobra.Command{
		Use:   "add-past --at DATE [--notes TEXT] CONTACT_ID...",
		Short: "Record a meeting that already happened and print its id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(at)
			if err != nil {
				return err
			}
			return a.run(cmd, true, func(ctx context.Context, reg *registry.Registry) error {
				participants, err := participantsFor(ctx, reg, args)
				if err != nil {
					return err
				}
				id, err := reg.AddNewPastMeeting(ctx, participants, date, notes)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "meeting date in RFC 3339 (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "meeting notes")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

type lookupFunc func(ctx context.Context, reg *registry.Registry, id int) (registry.Meeting, bool, error)

func lookupAny(ctx context.Context, reg *registry.Registry, id int) (registry.Meeting, bool, error) {
	m, ok := reg.Meeting(ctx, id)
	return m, ok, nil
}

func lookupPast(ctx context.Context, reg *registry.Registry, id int) (registry.Meeting, bool, error) {
	return reg.PastMeeting(ctx, id)
}

func lookupFuture(ctx context.Context, reg *registry.Registry, id int) (registry.Meeting, bool, error) {
	return reg.FutureMeeting(ctx, id)
}

func newMeetingLookupCmd(a *app, use, short string, lookup lookupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, false, func(ctx context.Context, reg *registry.Registry) error {
				m, ok, err := lookup(ctx, reg, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("meeting %d not found", id)
				}
				return printMeetings(cmd.OutOrStdout(), []registry.Meeting{m})
			})
		},
	}
}

func newMeetingOnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "on DATE",
		Short: "List meetings held at exactly DATE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, false, func(ctx context.Context, reg *registry.Registry) error {
				meetings, err := reg.MeetingsOn(ctx, date)
				if err != nil {
					return err
				}
				return printMeetings(cmd.OutOrStdout(), meetings)
			})
		},
	}
}

func newMeetingNotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notes ID TEXT",
		Short: "Add notes to a meeting that has taken place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, true, func(ctx context.Context, reg *registry.Registry) error {
				m, err := reg.AddMeetingNotes(ctx, id, args[1])
				if err != nil {
					return err
				}
				return printMeetings(cmd.OutOrStdout(), []registry.Meeting{m})
			})
		},
	}
}

func newMeetingForCmd(a *app) *cobra.Command {
	var past bool

	cmd := &cobra.Command{
		Use:   "for CONTACT_ID",
		Short: "List the future (or, with --past, past) meetings of a contact, latest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, false, func(ctx context.Context, reg *registry.Registry) error {
				contact, ok := reg.Contact(ctx, id)
				if !ok {
					// Let the registry report the unknown contact.
					contact = registry.NewContact(id, "", "")
				}

				var (
					meetings []registry.Meeting
					err      error
				)
				if past {
					meetings, err = reg.PastMeetingsFor(ctx, contact)
				} else {
					meetings, err = reg.FutureMeetingsFor(ctx, contact)
				}
				if err != nil {
					return err
				}
				return printMeetings(cmd.OutOrStdout(), meetings)
			})
		},
	}
	cmd.Flags().BoolVar(&past, "past", false, "list past meetings instead of future ones")
	return cmd
}
