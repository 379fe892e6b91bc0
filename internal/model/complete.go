package model

// FundComplete aggregates everything known about one fund for the
// /api/funds/{isin}/complete endpoint. Missing sections are null.
type FundComplete struct {
	Fund      Fund         `json:"fund"`
	FactSheet *FactSheet   `json:"factsheet"`
	Returns   *FundReturns `json:"returns"`
	Holdings  []Holding    `json:"holdings"`
	LatestNav *NavRecord   `json:"latest_nav"`
}
