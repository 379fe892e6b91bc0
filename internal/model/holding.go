package model

import "time"

// Holding represents one instrument held by a fund. Many-to-one with Fund;
// Isin is the scheme's ISIN, InstrumentIsin the held instrument's (if any).
type Holding struct {
	ID              int64     `json:"id"`
	Isin            string    `json:"isin"`
	InstrumentName  string    `json:"instrument_name"`
	InstrumentType  *string   `json:"instrument_type"`
	Sector          *string   `json:"sector"`
	PercentageToNav *float64  `json:"percentage_to_nav"`
	Quantity        *float64  `json:"quantity"`
	Value           *float64  `json:"value"`
	Coupon          *float64  `json:"coupon"`
	YieldValue      *float64  `json:"yield_value"`
	InstrumentIsin  *string   `json:"instrument_isin"`
	AmcName         *string   `json:"amc_name"`
	SchemeName      *string   `json:"scheme_name"`
	LastUpdated     time.Time `json:"last_updated"`
}

// NavRecord represents the fund's NAV on one date. Many-to-one with Fund.
type NavRecord struct {
	ID          int64     `json:"id"`
	Isin        string    `json:"isin"`
	Date        time.Time `json:"date"`
	Nav         float64   `json:"nav"`
	LastUpdated time.Time `json:"last_updated"`
}
