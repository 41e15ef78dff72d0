package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printUser(w io.Writer, u models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.DisplayName(), u.Email)
	fmt.Fprintf(w, "Role: %s\n", u.Role)
	if u.PhoneNumber != "" {
		fmt.Fprintf(w, "Phone: %s\n", u.PhoneNumber)
	}
	if u.EmergencyContact != "" {
		fmt.Fprintf(w, "Emergency contact: %s\n", u.EmergencyContact)
	}
}

func printMedications(w io.Writer, meds []models.Medication) {
	if len(meds) == 0 {
		fmt.Fprintln(w, "No medications")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDOSAGE\tGROUP\tACTIVE\tSCHEDULE")
	for _, m := range meds {
		times := make([]string, 0, len(m.Schedules))
		for _, s := range m.Schedules {
			times = append(times, fmt.Sprintf("%s %s", s.TimeOfDay, clock(s.ScheduledTime)))
		}
		group := "-"
		if m.GroupID != nil {
			group = strconv.FormatInt(*m.GroupID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Dosage, group, yesNo(m.IsActive), strings.Join(times, ", "))
	}
	_ = tw.Flush()
}

func printGroups(w io.Writer, groups []models.MedicationGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No medication groups")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, g := range groups {
		fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
	}
	_ = tw.Flush()
}

func printLogs(w io.Writer, logs []models.AdherenceLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "Nothing scheduled today")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTIME\tMEDICATION\tDOSAGE\tSTATUS\tTAKEN")
	for _, l := range logs {
		taken := ""
		if l.TakenAt != nil {
			taken = l.TakenAt.Local().Format("15:04")
		}
		status := l.StatusDisplay
		if status == "" {
			status = string(l.Status)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.ScheduledAt.Local().Format("15:04"), l.MedicationName, l.MedicationDosage, status, taken)
	}
	_ = tw.Flush()
}

func printAlerts(w io.Writer, alerts []models.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "WHEN\tTYPE\tSTATUS\tTITLE")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", stamp(a.ScheduledAt), a.AlertType, a.Status, a.Title)
	}
	_ = tw.Flush()
}

// clock trims seconds from "HH:MM:SS".
func clock(v string) string {
	if h, m, err := models.ParseClock(v); err == nil {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return v
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
