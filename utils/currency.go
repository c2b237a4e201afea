package utils

import "math"

// Money is stored as decimal(12,2) floats; arithmetic that has to reconcile
// to the cent goes through integer cents.

// Cents converts an amount to integer cents with half-up rounding.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to a 2-decimal amount.
func FromCents(c int64) float64 {
	return float64(c) / 100
}

// RoundMoney normalizes an amount to 2 decimals.
func RoundMoney(amount float64) float64 {
	return FromCents(Cents(amount))
}

// SplitCents divides total cents into n parts that sum exactly to total.
// The integer-division residue lands on the first part.
func SplitCents(total int64, n int) []int64 {
	parts := make([]int64, n)
	if n <= 0 {
		return parts
	}
	base := total / int64(n)
	rem := total - base*int64(n)
	for i := range parts {
		parts[i] = base
	}
	parts[0] += rem
	return parts
}

// ApportionCents distributes total cents across weights, residue on the
// first part, so the parts always sum exactly to total. All-zero weights
// fall back to an even split.
func ApportionCents(total int64, weights []int64) []int64 {
	n := len(weights)
	parts := make([]int64, n)
	if n == 0 {
		return parts
	}
	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		return SplitCents(total, n)
	}
	var assigned int64
	for i, w := range weights {
		parts[i] = total * w / weightSum
		assigned += parts[i]
	}
	parts[0] += total - assigned
	return parts
}

// Stock quantities are stored as decimal(12,3) floats; level arithmetic that
// must not drift goes through integer thousandths the same way money goes
// through cents.

// Millis converts a quantity to integer thousandths with half-up rounding.
func Millis(qty float64) int64 {
	return int64(math.Round(qty * 1000))
}

// FromMillis converts integer thousandths back to a 3-decimal quantity.
func FromMillis(m int64) float64 {
	return float64(m) / 1000
}

// WithinTolerance reports whether two amounts agree to within one cent.
func WithinTolerance(a, b float64) bool {
	diff := Cents(a) - Cents(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}
