package service

import (
	"parksmart/internal/model"
)

// ComputeCost prices the window [start, end) at hourlyRate.
// A window with end <= start is an incomplete selection and prices to a zero quote.
// The rate is not validated.
func ComputeCost(start, end model.ClockTime, hourlyRate float64) model.Quote {
	if end <= start {
		return model.Quote{}
	}
	hours := end.Sub(start).Hours()
	return model.Quote{
		DurationHours: hours,
		TotalCost:     hours * hourlyRate,
	}
}

// QuoteWindow parses "HH:MM" bounds and prices them. Unparseable bounds price like an empty window.
func QuoteWindow(startTime, endTime string, hourlyRate float64) model.Quote {
	start, err := model.ParseClockTime(startTime)
	if err != nil {
		return model.Quote{}
	}
	end, err := model.ParseClockTime(endTime)
	if err != nil {
		return model.Quote{}
	}
	return ComputeCost(start, end, hourlyRate)
}
