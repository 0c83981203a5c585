package cowin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// calendarResponse is the calendarByPin / calendarByDistrict payload. The
// pointer distinguishes a missing key from an empty list.
type calendarResponse struct {
	Centers *[]apiCenter `json:"centers"`
}

// dayResponse is the findByPin / findByDistrict payload: one entry per
// session with the center fields flattened in.
type dayResponse struct {
	Sessions *[]apiDaySession `json:"sessions"`
}

// apiCenter and apiSession use pointers for the keys availability depends
// on, so a missing key is told apart from a real zero.
type apiCenter struct {
	CenterID     flexInt       `json:"center_id"`
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	StateName    string        `json:"state_name"`
	DistrictName string        `json:"district_name"`
	BlockName    string        `json:"block_name"`
	Pincode      flexInt       `json:"pincode"`
	FeeType      string        `json:"fee_type"`
	Sessions     *[]apiSession `json:"sessions"`
}

type apiSession struct {
	SessionID              string     `json:"session_id"`
	Date                   string     `json:"date"`
	AvailableCapacity      *flexInt   `json:"available_capacity"`
	AvailableCapacityDose1 flexInt    `json:"available_capacity_dose1"`
	AvailableCapacityDose2 flexInt    `json:"available_capacity_dose2"`
	MinAgeLimit            flexInt    `json:"min_age_limit"`
	Vaccine                string     `json:"vaccine"`
	Slots                  []flexSlot `json:"slots"`
}

type apiDaySession struct {
	CenterID     flexInt `json:"center_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	DistrictName string  `json:"district_name"`
	Pincode      flexInt `json:"pincode"`
	FeeType      string  `json:"fee_type"`
	apiSession
}

// flexInt accepts JSON numbers (integral or not) and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", b, err)
	}
	*f = flexInt(math.Trunc(v))
	return nil
}

// flexSlot accepts either a plain string ("09:00AM-11:00AM") or the newer
// object form {"time": "...", "seats": n}.
type flexSlot string

func (s *flexSlot) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexSlot(str)
		return nil
	}
	var obj struct {
		Time string `json:"time"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("invalid slot %s: %w", b, err)
	}
	*s = flexSlot(obj.Time)
	return nil
}
