package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/contact-registry/internal/registry"
)

func printContacts(w io.Writer, contacts []*registry.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNOTES")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID(), c.Name(), c.Notes())
	}
	return tw.Flush()
}

func printMeetings(w io.Writer, meetings []registry.Meeting) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tPARTICIPANTS\tNOTES")
	for _, m := range meetings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			m.ID(),
			m.Date().UTC().Format(time.RFC3339),
			m.Status(),
			joinIDs(m.ParticipantIDs()),
			m.Notes(),
		)
	}
	return tw.Flush()
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || id < 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg string) (int, error) {
	ids, err := parseIDs([]string{arg})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected RFC 3339, e.g. 2030-01-02T15:04:05Z", value)
	}
	return t, nil
}
