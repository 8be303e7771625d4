package models

import "time"

// MarketRate is the central-bank benchmark and the refinance rate derived from it
type MarketRate struct {
	KeyRate       float64   `json:"key_rate"`
	Margin        float64   `json:"margin"`
	RefinanceRate float64   `json:"refinance_rate"`
	RetrievedAt   time.Time `json:"retrieved_at"`
}
