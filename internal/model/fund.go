package model

import "time"

// Fund represents a mutual fund scheme, keyed by ISIN.
type Fund struct {
	Isin        string    `json:"isin"`
	SchemeName  string    `json:"scheme_name"`
	FundType    string    `json:"fund_type"`
	FundSubtype *string   `json:"fund_subtype"`
	AmcName     string    `json:"amc_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FactSheet holds factsheet data for a fund. One-to-one with Fund.
// Optional fields are pointers so absent values round-trip as null.
type FactSheet struct {
	Isin         string     `json:"isin"`
	FundManager  *string    `json:"fund_manager"`
	Aum          *float64   `json:"aum"`
	ExpenseRatio *float64   `json:"expense_ratio"`
	LaunchDate   *time.Time `json:"launch_date"`
	ExitLoad     *string    `json:"exit_load"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// FundReturns holds trailing return percentages for a fund. One-to-one with Fund.
type FundReturns struct {
	Isin        string    `json:"isin"`
	Return1M    *float64  `json:"return_1m"`
	Return3M    *float64  `json:"return_3m"`
	Return6M    *float64  `json:"return_6m"`
	ReturnYTD   *float64  `json:"return_ytd"`
	Return1Y    *float64  `json:"return_1y"`
	Return3Y    *float64  `json:"return_3y"`
	Return5Y    *float64  `json:"return_5y"`
	LastUpdated time.Time `json:"last_updated"`
}
