package pricing

// Locally embedded copies of the percentage tables and the fare table. The
// discount percentages always resolve from here, so a discount-table outage
// can never fail a quote; the fare fallback is consulted only when the fare
// service is unreachable.

type tier struct {
	min, max int // max < 0 means unbounded
	percent  float64
}

var groupTiers = []tier{
	{1, 2, 0.0},
	{3, 5, 0.10},
	{6, 10, 0.20},
	{11, 15, 0.30},
}

var loyaltyTiers = []tier{
	{0, 1, 0.0},
	{2, 4, 0.10},
	{5, 6, 0.20},
	{7, -1, 0.30},
}

const (
	birthdayPercent = 0.50
	// Parties of 1-2 do not qualify for the birthday discount.
	birthdayMinPartySize = 3
)

// Fallback base prices per participant, keyed by session duration in minutes.
var fallbackFares = map[int]float64{
	15: 10000,
	20: 13000,
	25: 15000,
}

func lookupPercent(tiers []tier, n int) float64 {
	for _, t := range tiers {
		if n >= t.min && (t.max < 0 || n <= t.max) {
			return t.percent
		}
	}
	return 0.0
}

// GroupDiscountPercent returns the uniform discount applied to every
// participant's base share for the given party size.
func GroupDiscountPercent(partySize int) float64 {
	return lookupPercent(groupTiers, partySize)
}

// LoyaltyDiscountPercent returns the per-participant discount for the given
// visit count.
func LoyaltyDiscountPercent(visits int) float64 {
	return lookupPercent(loyaltyTiers, visits)
}

// BirthdayDiscountPercent returns the flat birthday discount, which applies
// only when the participant has a birthday match and the party qualifies.
func BirthdayDiscountPercent(isBirthday bool, partySize int) float64 {
	if isBirthday && partySize >= birthdayMinPartySize {
		return birthdayPercent
	}
	return 0.0
}

func fallbackBasePrice(durationMinutes int) (float64, bool) {
	price, ok := fallbackFares[durationMinutes]
	return price, ok
}
