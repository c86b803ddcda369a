package karma

// Tier maps a minimum payment amount to a karma award.
type Tier struct {
	MinAmount float64 // Inclusive lower bound in the chain's native unit
	Award     int64   // Karma granted when the amount reaches MinAmount
}

// Schedule is the fixed award ladder, ordered from highest threshold to
// lowest. First match wins.
var Schedule = []Tier{
	{MinAmount: 0.1, Award: 1000},
	{MinAmount: 0.05, Award: 500},
	{MinAmount: 0.01, Award: 100},
	{MinAmount: 0.001, Award: 10},
}

// ForAmount returns the karma award for a payment of the given amount.
// Threshold boundaries are inclusive; amounts below the lowest threshold
// (including zero and negative values) resolve to 0. Never fails.
func ForAmount(amount float64) int64 {
	for _, t := range Schedule {
		if amount >= t.MinAmount {
			return t.Award
		}
	}
	return 0
}
