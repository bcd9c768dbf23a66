// Package schedule builds the weekly appointment board: a fixed grid of
// time slots by weekday for one Monday-to-Friday window.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"salaogestor_backend/internal/models"
)

// TimeSlots are the bookable times of day, in grid row order.
var TimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// Weekdays are the grid columns, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// MaxWeekOffset bounds week navigation in either direction, about ten years.
const MaxWeekOffset = 520

// Capacity is the number of cells in a grid.
func Capacity() int {
	return len(TimeSlots) * len(Weekdays)
}

const dateLayout = "2006-01-02"

// Entry is the projection of an appointment shown in a grid cell.
type Entry struct {
	Client  string `json:"client"`
	Service string `json:"service"`
}

// Grid maps time label -> weekday label -> entry. A nil entry is a free slot.
type Grid map[string]map[string]*Entry

// Totals are the summary counters shown under the grid.
type Totals struct {
	Booked    int `json:"booked"`
	Finished  int `json:"finished"`
	Available int `json:"available"`
	OffGrid   int `json:"off_grid"`
}

// WeekView is everything the presentation layer needs for one week.
type WeekView struct {
	Grid      Grid                 `json:"grid"`
	Profile   *models.StaffProfile `json:"profile"`
	Offset    int                  `json:"offset"`
	WeekLabel string               `json:"week_label"`
	WeekStart string               `json:"week_start"`
	WeekEnd   string               `json:"week_end"`
	Totals    Totals               `json:"totals"`

	// Unslotted lists appointments that fell outside the fixed slot set.
	Unslotted []models.Appointment `json:"-"`
}

// IsTimeSlot reports whether label is one of TimeSlots.
func IsTimeSlot(label string) bool {
	for _, s := range TimeSlots {
		if s == label {
			return true
		}
	}
	return false
}

// WeekdayIndex maps a date to its column: 0 for Monday through 4 for Friday.
// ok is false on weekends.
func WeekdayIndex(d time.Time) (idx int, ok bool) {
	wd := d.Weekday()
	if wd < time.Monday || wd > time.Friday {
		return 0, false
	}
	return int(wd - time.Monday), true
}

// ParseWeekOffset reads the week navigation parameter. Anything that is not
// an integer within MaxWeekOffset counts as the current week.
func ParseWeekOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return normalizeOffset(n)
}

func normalizeOffset(offset int) int {
	if offset < -MaxWeekOffset || offset > MaxWeekOffset {
		return 0
	}
	return offset
}

// WeekWindow returns the Monday and Friday, as calendar dates at UTC
// midnight, of the week offset weeks away from the week containing now.
// Offsets beyond MaxWeekOffset select the current week.
func WeekWindow(now time.Time, offset int) (start, end time.Time) {
	offset = normalizeOffset(offset)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	// ISO weekday index: Monday=0 ... Sunday=6.
	isoIdx := (int(today.Weekday()) + 6) % 7
	start = today.AddDate(0, 0, -isoIdx+7*offset)
	end = start.AddDate(0, 0, len(Weekdays)-1)
	return start, end
}

// WeekLabel renders the window as "DD/MM/YYYY - DD/MM/YYYY".
func WeekLabel(start, end time.Time) string {
	return start.Format("02/01/2006") + " - " + end.Format("02/01/2006")
}

// NewGrid returns a grid with every slot present and free.
func NewGrid() Grid {
	g := make(Grid, len(TimeSlots))
	for _, t := range TimeSlots {
		row := make(map[string]*Entry, len(Weekdays))
		for _, d := range Weekdays {
			row[d] = nil
		}
		g[t] = row
	}
	return g
}

// Occupied counts non-empty cells.
func (g Grid) Occupied() int {
	n := 0
	for _, row := range g {
		for _, e := range row {
			if e != nil {
				n++
			}
		}
	}
	return n
}

// Build folds appointments into a fresh week view for the window of
// offset relative to now. Appointments are expected in (date, time, id)
// order; when two share a cell the later one is shown.
func Build(appointments []models.Appointment, now time.Time, offset int) WeekView {
	offset = normalizeOffset(offset)
	start, end := WeekWindow(now, offset)
	grid := NewGrid()
	view := WeekView{
		Grid:      grid,
		Offset:    offset,
		WeekLabel: WeekLabel(start, end),
		WeekStart: start.Format(dateLayout),
		WeekEnd:   end.Format(dateLayout),
	}

	for _, a := range appointments {
		if a.Status == models.AppointmentStatusFinished {
			view.Totals.Finished++
		}
		idx, ok := WeekdayIndex(a.Date)
		if !ok {
			continue
		}
		row, ok := grid[a.TimeString()]
		if !ok {
			view.Unslotted = append(view.Unslotted, a)
			continue
		}
		row[Weekdays[idx]] = &Entry{Client: a.ClientName, Service: a.Service}
	}

	view.Totals.Booked = len(appointments)
	view.Totals.OffGrid = len(view.Unslotted)
	view.Totals.Available = Capacity() - grid.Occupied()
	return view
}
