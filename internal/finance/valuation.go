package finance

// ARV capitalizes NOI at the market cap rate. An unusable cap rate gives 0.
func ARV(noi, marketCapRate float64) float64 {
	return ratio(noi, marketCapRate)
}

// LoanToValue returns loanAmount / value, or 0 without a value
func LoanToValue(loanAmount, value float64) float64 {
	return ratio(loanAmount, value)
}

// LoanToCost returns loanAmount / allInCost, or 0 without a cost
func LoanToCost(loanAmount, allInCost float64) float64 {
	return ratio(loanAmount, allInCost)
}

// Equity is value less the outstanding loan balance
func Equity(value, outstandingBalance float64) float64 {
	return value - outstandingBalance
}
