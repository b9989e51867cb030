package rules

import "fmt"

const (
	// UnitsPerDollar is the fixed coin-to-dollar conversion: 100 units = $1.
	UnitsPerDollar = 100

	// MinWithdrawalUnits is the minimum balance required to request a
	// cash-out.
	MinWithdrawalUnits = 100

	// DefaultTaskReward is credited for a completed task unless the
	// admin sets another value.
	DefaultTaskReward = 20
)

// Dollars renders an amount of coin units as a dollar string, e.g.
// 250 -> "2.50".
func Dollars(units int64) string {
	return fmt.Sprintf("%d.%02d", units/UnitsPerDollar, units%UnitsPerDollar)
}

// ClampWithdrawal returns the amount actually withdrawn for a request:
// never more than the held balance, and a non-positive request cashes
// out the full balance.
func ClampWithdrawal(requested, balance int64) int64 {
	if requested <= 0 || requested > balance {
		return balance
	}
	return requested
}
