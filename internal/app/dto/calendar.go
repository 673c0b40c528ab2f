package dto

import (
	"time"

	"hotelbooking/internal/domain/inventory"
)

type CalendarView struct {
	RoomID      string          `json:"roomId"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Currency    string          `json:"currency"`
	WeekendDays string          `json:"weekendDays"`
	Days        []inventory.Day `json:"days"`
	Stats       inventory.Stats `json:"stats"`
	Drift       inventory.Drift `json:"drift"`
}

func MapCalendar(cal inventory.Calendar, weekend inventory.WeekendDays, drift inventory.Drift) CalendarView {
	return CalendarView{
		RoomID:      string(cal.RoomID),
		From:        cal.From,
		To:          cal.To,
		Currency:    cal.Currency,
		WeekendDays: weekend.String(),
		Days:        cal.Days,
		Stats:       cal.Stats,
		Drift:       drift,
	}
}
