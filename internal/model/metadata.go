package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderMeta carries the optional scheduling hints attached to an order.
// Anything the payload contains beyond these fields is ignored.
type OrderMeta struct {
	IsDelayed    bool   `json:"is_delayed,omitempty"`
	PlannedEndDT string `json:"planned_end_dt,omitempty"`
}

func (m *OrderMeta) UnmarshalJSON(data []byte) error {
	*m = OrderMeta{}
	raw, err := decodeLoose(data)
	if err != nil {
		return nil
	}
	m.IsDelayed = looseBool(raw["is_delayed"])
	m.PlannedEndDT = looseString(raw["planned_end_dt"])
	return nil
}

// ItemMetadata is the typed form of the per-item hints: shift/hour usage and
// a daily rate for equipment, a billing mode for services, a free-form note
// for everything else. Missing or unparsable numeric fields decode as zero,
// never as an error.
type ItemMetadata struct {
	Shifts      decimal.Decimal
	Hours       decimal.Decimal
	DailyRate   decimal.Decimal
	BillingMode string
	Note        string
}

const (
	BillingModeFixed   = "fixed"
	BillingModePerHour = "per_hour"
)

func (m ItemMetadata) IsZero() bool {
	return m.Shifts.IsZero() && m.Hours.IsZero() && m.DailyRate.IsZero() &&
		m.BillingMode == "" && m.Note == ""
}

func (m ItemMetadata) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if !m.Shifts.IsZero() {
		out["shifts"] = m.Shifts.String()
	}
	if !m.Hours.IsZero() {
		out["hours"] = m.Hours.String()
	}
	if !m.DailyRate.IsZero() {
		out["daily_rate"] = m.DailyRate.String()
	}
	if m.BillingMode != "" {
		out["billing_mode"] = m.BillingMode
	}
	if m.Note != "" {
		out["note"] = m.Note
	}
	return json.Marshal(out)
}

func (m *ItemMetadata) UnmarshalJSON(data []byte) error {
	*m = ItemMetadata{}
	raw, err := decodeLoose(data)
	if err != nil {
		return nil
	}
	m.Shifts = looseDecimal(raw["shifts"])
	m.Hours = looseDecimal(raw["hours"])
	m.DailyRate = looseDecimal(raw["daily_rate"])
	m.BillingMode = looseString(raw["billing_mode"])
	m.Note = looseString(raw["note"])
	return nil
}

func decodeLoose(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func looseDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func looseString(v any) string {
	s, _ := v.(string)
	return s
}

func looseBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "1"
	}
	return false
}
