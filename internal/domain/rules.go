package domain

// Rules holds the tunable constants of the turn engine and supply system.
type Rules struct {
	SupplyProbability float64
	SupplyCooldown    int
	SupplyMaxUses     int
	SupplyBoost       int
	SupplyDeficit     int
	SupplyCampsLost   int
	InactivityLimit   int
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		SupplyProbability: 0.35,
		SupplyCooldown:    3,
		SupplyMaxUses:     3,
		SupplyBoost:       4,
		SupplyDeficit:     8,
		SupplyCampsLost:   2,
		InactivityLimit:   3,
	}
}

// Random is the source of randomness for initiator choice and supply rolls.
// *math/rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}
