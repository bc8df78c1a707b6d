package csvio

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/timetabling-ga/pkg/genetic"
	"github.com/limaJavier/timetabling-ga/pkg/model"
	"github.com/samber/lo"
)

var days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ScheduleRow is one placed session
type ScheduleRow struct {
	Slot     int    `csv:"slot"`
	Day      string `csv:"day"`
	Period   int    `csv:"period"`
	Groups   string `csv:"groups"`
	Subject  string `csv:"subject"`
	Type     string `csv:"type"`
	Lecturer string `csv:"lecturer"`
	Room     string `csv:"room"`
}

// HoursRow compares, for one subject, the hours the term requires with the hours the schedule provides
type HoursRow struct {
	Subject        string  `csv:"subject"`
	Sessions       int     `csv:"sessions"`
	RequiredHours  float64 `csv:"required_hours"`
	ScheduledHours float64 `csv:"scheduled_hours"`
	Deviation      float64 `csv:"deviation"`
}

func dayName(day int) string {
	if day < len(days) {
		return days[day]
	}
	return fmt.Sprintf("Day %d", day+1)
}

// slotName turns a slot index into "<day> P<period>", periods counted from 1
func slotName(slot, periodsPerDay int) string {
	return fmt.Sprintf("%v P%d", dayName(slot/periodsPerDay), slot%periodsPerDay+1)
}

// ScheduleRows lists every placed session ordered by slot and then by participants
func ScheduleRows(index *model.Index, schedule *genetic.Schedule, periodsPerDay int) []*ScheduleRow {
	rows := make([]*ScheduleRow, 0, schedule.Len())
	for slot, bucket := range schedule.Slots {
		for _, session := range bucket {
			rows = append(rows, &ScheduleRow{
				Slot:     slot,
				Day:      dayName(slot / periodsPerDay),
				Period:   slot%periodsPerDay + 1,
				Groups:   strings.Join(session.Groups, ";"),
				Subject:  session.Subject,
				Type:     string(session.Type),
				Lecturer: index.LecturerName(session.Lecturer),
				Room:     index.RoomName(session.Room),
			})
		}
	}

	slices.SortStableFunc(rows, func(row1, row2 *ScheduleRow) int {
		if slot := cmp.Compare(row1.Slot, row2.Slot); slot != 0 {
			return slot
		}
		return strings.Compare(row1.Groups, row2.Groups)
	})
	return rows
}

// HoursReport lists the subjects in catalog order with their required and scheduled hours per term
func HoursReport(catalog model.Catalog, schedule *genetic.Schedule, params genetic.Parameters) []*HoursRow {
	sessions := lo.CountValuesBy(schedule.Sessions(), func(session model.Session) string { return session.Subject })

	return lo.Map(catalog.Subjects, func(subject model.Subject, _ int) *HoursRow {
		scheduled := float64(sessions[subject.Name]) * params.UnitDuration * params.WeeksPerTerm
		return &HoursRow{
			Subject:        subject.Name,
			Sessions:       sessions[subject.Name],
			RequiredHours:  subject.TotalHours,
			ScheduledHours: scheduled,
			Deviation:      math.Abs(subject.TotalHours - scheduled),
		}
	})
}

func WriteSchedule(out io.Writer, rows []*ScheduleRow) error {
	return gocsv.Marshal(&rows, out)
}

func WriteHours(out io.Writer, rows []*HoursRow) error {
	return gocsv.Marshal(&rows, out)
}

// WriteGrid writes one row per group and one column per slot. A cell describes what the group, or any
// of its subgroups, attends in that slot; parallel subgroup sessions are separated by " | "
func WriteGrid(out io.Writer, catalog model.Catalog, index *model.Index, schedule *genetic.Schedule, periodsPerDay int) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(out))

	header := append([]string{"group"}, lo.Map(lo.Range(schedule.Horizon()), func(slot int, _ int) string {
		return slotName(slot, periodsPerDay)
	})...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, group := range catalog.Groups {
		members := append([]string{group.Name}, group.Subgroups...)
		cells := make([]string, 0, schedule.Horizon()+1)
		cells = append(cells, group.Name)
		for _, bucket := range schedule.Slots {
			attended := lo.Filter(bucket, func(session model.Session, _ int) bool {
				return lo.Some(members, session.Groups)
			})
			cells = append(cells, strings.Join(lo.Map(attended, func(session model.Session, _ int) string {
				return fmt.Sprintf("%v (%v) %v, %v, %v",
					session.Subject,
					session.Type,
					strings.Join(session.Groups, ";"),
					index.LecturerName(session.Lecturer),
					index.RoomName(session.Room),
				)
			}), " | "))
		}
		if err := writer.Write(cells); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Export writes rows into the file at path, replacing it if it exists
func Export[T any](path string, rows []*T) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %v: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("failed to write %v: %w", path, err)
	}
	return nil
}
