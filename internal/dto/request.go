package dto

import (
	"bytes"
	"encoding/json"

	"github.com/Eursukkul/table-booking/internal/ledger"
)

// GuestCount keeps the submitted guest count as text so the ledger can tell
// "abc" apart from 0. It accepts a JSON number or a JSON string.
type GuestCount string

func (g *GuestCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GuestCount(s)
		return nil
	}
	*g = GuestCount(data)
	return nil
}

// UnmarshalParam lets echo bind the field from form values.
func (g *GuestCount) UnmarshalParam(param string) error {
	*g = GuestCount(param)
	return nil
}

type ReservationRequest struct {
	Name       string     `json:"name" form:"name"`
	Phone      string     `json:"phone" form:"phone"`
	GuestCount GuestCount `json:"guestCount" form:"guestCount"`
}

func (r ReservationRequest) Input() ledger.Input {
	return ledger.Input{
		Name:       r.Name,
		Phone:      r.Phone,
		GuestCount: string(r.GuestCount),
	}
}
