package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayOfWeek enumerates the weekly grid days.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Weekdays lists the days in grid order.
var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay normalises a day string into a DayOfWeek.
func ParseDay(raw string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	for _, d := range Weekdays {
		if d == day {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// Timetable is a named, versioned weekly schedule for a class.
type Timetable struct {
	ID            string     `db:"id" json:"id"`
	ClassID       string     `db:"class_id" json:"class_id"`
	Name          string     `db:"name" json:"name"`
	Version       int        `db:"version" json:"version"`
	Active        bool       `db:"active" json:"active"`
	EffectiveFrom time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveTo   *time.Time `db:"effective_to" json:"effective_to,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// TimeSlot is one weekly occurrence of a subject-teacher pairing for a
// class/section. SectionID and RoomID are nullable; a nil SectionID means the
// slot is recorded without a section, not that it applies to every section.
type TimeSlot struct {
	ID               string    `db:"id" json:"id"`
	TimetableID      string    `db:"timetable_id" json:"timetable_id"`
	ClassID          string    `db:"class_id" json:"class_id"`
	SectionID        *string   `db:"section_id" json:"section_id,omitempty"`
	SubjectTeacherID string    `db:"subject_teacher_id" json:"subject_teacher_id"`
	RoomID           *string   `db:"room_id" json:"room_id,omitempty"`
	Day              DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime        string    `db:"start_time" json:"start_time"`
	EndTime          string    `db:"end_time" json:"end_time"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Interval returns the slot's validated time interval.
func (s TimeSlot) Interval() (TimeInterval, error) {
	return NewTimeInterval(s.Day, s.StartTime, s.EndTime)
}

// TimeSlotFilter describes query params for listing slots.
type TimeSlotFilter struct {
	TimetableID      string
	ClassID          string
	SectionID        string
	SubjectTeacherID string
	RoomID           string
	Day              string
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}

// TimeInterval is a half-open [Start, End) range of minutes-of-day on a weekday.
type TimeInterval struct {
	Day      DayOfWeek
	StartMin int
	EndMin   int
}

// NewTimeInterval parses HH:MM clock strings and enforces start < end.
func NewTimeInterval(day DayOfWeek, start, end string) (TimeInterval, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return TimeInterval{}, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return TimeInterval{}, err
	}
	if startMin >= endMin {
		return TimeInterval{}, fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return TimeInterval{Day: day, StartMin: startMin, EndMin: endMin}, nil
}

// Overlaps reports whether two intervals share any instant. Half-open
// semantics: adjacent intervals touching at a boundary do not overlap.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	if i.Day != other.Day {
		return false
	}
	return i.StartMin < other.EndMin && other.StartMin < i.EndMin
}

func parseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock time %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock time %q", raw)
	}
	return hour*60 + minute, nil
}

// ConflictAxis identifies which booking dimension a slot collides on.
type ConflictAxis string

const (
	AxisClassSection ConflictAxis = "CLASS_SECTION"
	AxisTeacher      ConflictAxis = "TEACHER"
	AxisRoom         ConflictAxis = "ROOM"
)

// SlotConflict describes the existing slot that blocks a proposal.
type SlotConflict struct {
	SlotID           string       `json:"slot_id"`
	TimetableID      string       `json:"timetable_id"`
	ClassID          string       `json:"class_id"`
	SectionID        *string      `json:"section_id,omitempty"`
	SubjectTeacherID string       `json:"subject_teacher_id"`
	RoomID           *string      `json:"room_id,omitempty"`
	Day              DayOfWeek    `json:"day_of_week"`
	StartTime        string       `json:"start_time"`
	EndTime          string       `json:"end_time"`
	Axis             ConflictAxis `json:"axis"`
	Description      string       `json:"description"`
}

// SlotConflictError is returned when a proposed slot collides with an existing one.
type SlotConflictError struct {
	Axis        ConflictAxis `json:"axis"`
	Description string       `json:"description"`
	Conflict    SlotConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Description
}

// GridDay groups the slots of one weekday ordered by start time.
type GridDay struct {
	Day   DayOfWeek  `json:"day"`
	Slots []TimeSlot `json:"slots"`
}

// TimetableGrid is the weekly view of an active timetable.
type TimetableGrid struct {
	Timetable Timetable `json:"timetable"`
	Days      []GridDay `json:"days"`
}
