package types

import (
	"cosmossdk.io/math"
)

// The ledger's proportional algorithms all use the same sequential
// floor-division scheme: walk the record store in positional order,
// give each entry floor(weight * remainingAmount / remainingPool), then
// shrink both running totals. The last entry with weight is exact, so
// the amount is always distributed in full; floor rounding favors
// earlier records. Iteration order therefore affects exact per-record
// values (never totals) and is fixed to record-store order.

// proRataCut returns floor(weight * remaining / pool).
func proRataCut(weight, remaining, pool math.Int) math.Int {
	if pool.IsZero() || weight.IsZero() || remaining.IsZero() {
		return math.ZeroInt()
	}
	return weight.Mul(remaining).Quo(pool)
}

// allocator carries the running totals of one sequential distribution.
type allocator struct {
	remaining math.Int
	pool      math.Int
}

// newAllocator distributes amount across a pool of total weight pool.
func newAllocator(amount, pool math.Int) allocator {
	return allocator{remaining: amount, pool: pool}
}

// next consumes one entry of the given weight and returns its cut.
func (a *allocator) next(weight math.Int) math.Int {
	cut := proRataCut(weight, a.remaining, a.pool)
	a.remaining = a.remaining.Sub(cut)
	a.pool = a.pool.Sub(weight)
	return cut
}

// minInt returns the smaller of a and b.
func minInt(a, b math.Int) math.Int {
	if a.LT(b) {
		return a
	}
	return b
}

// pow10 returns 10^decimals as an Int.
func pow10(decimals uint64) math.Int {
	return math.NewIntWithDecimal(1, int(decimals))
}
