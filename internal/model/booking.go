package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar date format used in booking requests and records
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock format used for start and end times
	ClockLayout = "15:04"
)

// ClockTime is a wall-clock time of day, stored as minutes after midnight
type ClockTime int

// ParseClockTime parses "HH:MM" into a ClockTime
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// Sub returns the signed span from u to c
func (c ClockTime) Sub(u ClockTime) time.Duration {
	return time.Duration(int(c)-int(u)) * time.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Quote is the result of pricing a time window
type Quote struct {
	DurationHours float64 `json:"duration_hours"`
	TotalCost     float64 `json:"total_cost"`
}

// Bookable reports whether the window has a positive duration
func (q Quote) Bookable() bool {
	return q.DurationHours > 0
}

// BookingRequest represents the user-entered booking form
type BookingRequest struct {
	SpotID        string `json:"spot_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	VehicleNumber string `json:"vehicle_number"`
}

// BookingRecord is the immutable confirmation produced for a valid booking
type BookingRecord struct {
	BookingID     string    `json:"booking_id" db:"booking_id"`
	SpotID        string    `json:"spot_id" db:"spot_id"`
	SpotName      string    `json:"spot_name" db:"spot_name"`
	Address       string    `json:"address" db:"address"`
	Date          string    `json:"date" db:"date"`
	StartTime     string    `json:"start_time" db:"start_time"`
	EndTime       string    `json:"end_time" db:"end_time"`
	VehicleNumber string    `json:"vehicle_number" db:"vehicle_number"`
	DurationHours float64   `json:"duration_hours" db:"duration_hours"`
	TotalCost     float64   `json:"total_cost" db:"total_cost"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Ticket returns the payload encoded into the entry QR code
func (r BookingRecord) Ticket() string {
	return "ParkSmart Booking: " + r.BookingID
}

// EndsAt returns the instant the booked window closes, in loc
func (r BookingRecord) EndsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, r.Date+" "+r.EndTime, loc)
}

// BookingStatus is derived at read time; records themselves never change
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
)

// Status derives the dashboard status of the booking at now
func (r BookingRecord) Status(now time.Time) BookingStatus {
	end, err := r.EndsAt(now.Location())
	if err != nil || !now.Before(end) {
		return BookingCompleted
	}
	return BookingActive
}
