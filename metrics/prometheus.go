package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options Vault Metrics Collector
// Provides metrics for monitoring vault rounds and flows

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all vault metrics
type Collector struct {
	// Deposit flow metrics
	DepositsTotal    *prometheus.CounterVec
	DepositValue     *prometheus.CounterVec
	WithdrawalsTotal *prometheus.CounterVec
	WithdrawalValue  *prometheus.CounterVec

	// Share pool metrics
	ShareSupply *prometheus.GaugeVec
	PoolBalance *prometheus.GaugeVec

	// Round lifecycle metrics
	RoundsActivated  *prometheus.CounterVec
	RoundIndex       *prometheus.GaugeVec
	SettlementsTotal *prometheus.CounterVec
	SettlementValue  *prometheus.CounterVec

	// Bid metrics
	BidsTotal      *prometheus.CounterVec
	ExercisesTotal *prometheus.CounterVec
	ExerciseValue  *prometheus.CounterVec

	// Fee fund metrics
	FeeFundBalance *prometheus.GaugeVec
	FeesCollected  *prometheus.CounterVec

	// Lending metrics
	LendingWithdrawals *prometheus.CounterVec
	LendingReturns     *prometheus.CounterVec
	LendingShortfall   *prometheus.CounterVec

	// Refund metrics
	RefundsPosted  *prometheus.CounterVec
	RefundsClaimed *prometheus.CounterVec

	// System metrics
	InvariantViolations *prometheus.CounterVec
	EndBlockLatency     *prometheus.HistogramVec
	BlockHeight         prometheus.Gauge
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Deposit flow metrics
	c.DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "deposits",
			Name:      "total",
			Help:      "Total number of deposits",
		},
		[]string{"vault_id"},
	)

	c.DepositValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "deposits",
			Name:      "value",
			Help:      "Total deposited value (base units)",
		},
		[]string{"vault_id", "denom"},
	)

	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "withdrawals",
			Name:      "total",
			Help:      "Total number of withdrawals and claims",
		},
		[]string{"vault_id", "kind"},
	)

	c.WithdrawalValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "withdrawals",
			Name:      "value",
			Help:      "Total withdrawn value (base units)",
		},
		[]string{"vault_id", "denom"},
	)

	// Share pool metrics
	c.ShareSupply = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ovault",
			Subsystem: "pools",
			Name:      "share_supply",
			Help:      "Share supply per sub-pool",
		},
		[]string{"vault_id", "pool"},
	)

	c.PoolBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ovault",
			Subsystem: "pools",
			Name:      "balance",
			Help:      "Token balance per sub-pool (base units)",
		},
		[]string{"vault_id", "pool"},
	)

	// Round lifecycle metrics
	c.RoundsActivated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "rounds",
			Name:      "activated_total",
			Help:      "Total number of round activations",
		},
		[]string{"vault_id"},
	)

	c.RoundIndex = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ovault",
			Subsystem: "rounds",
			Name:      "index",
			Help:      "Current round index per vault",
		},
		[]string{"vault_id"},
	)

	c.SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "rounds",
			Name:      "settlements_total",
			Help:      "Total number of round settlements",
		},
		[]string{"vault_id"},
	)

	c.SettlementValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "rounds",
			Name:      "settlement_value",
			Help:      "Total value moved to bid pools at settlement",
		},
		[]string{"vault_id"},
	)

	// Bid metrics
	c.BidsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "bids",
			Name:      "total",
			Help:      "Total number of bids placed",
		},
		[]string{"vault_id"},
	)

	c.ExercisesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "bids",
			Name:      "exercises_total",
			Help:      "Total number of bid exercises",
		},
		[]string{"vault_id"},
	)

	c.ExerciseValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "bids",
			Name:      "exercise_value",
			Help:      "Total payoff paid on exercise (base units)",
		},
		[]string{"vault_id", "denom"},
	)

	// Fee fund metrics
	c.FeeFundBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ovault",
			Subsystem: "fees",
			Name:      "fund_balance",
			Help:      "Fee fund balance per fund and denom",
		},
		[]string{"fund_id", "denom"},
	)

	c.FeesCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "fees",
			Name:      "collected_total",
			Help:      "Total fees collected (base units)",
		},
		[]string{"vault_id", "denom"},
	)

	// Lending metrics
	c.LendingWithdrawals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "lending",
			Name:      "withdrawals_total",
			Help:      "Total lending withdrawals",
		},
		[]string{"vault_id"},
	)

	c.LendingReturns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "lending",
			Name:      "returns_total",
			Help:      "Total lending principal returns",
		},
		[]string{"vault_id"},
	)

	c.LendingShortfall = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "lending",
			Name:      "shortfall_covered",
			Help:      "Total lending shortfall covered from fee fund (base units)",
		},
		[]string{"vault_id"},
	)

	// Refund metrics
	c.RefundsPosted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "refunds",
			Name:      "posted_total",
			Help:      "Total refunds posted",
		},
		[]string{"denom"},
	)

	c.RefundsClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "refunds",
			Name:      "claimed_total",
			Help:      "Total refunds claimed",
		},
		[]string{"denom"},
	)

	// System metrics
	c.InvariantViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ovault",
			Subsystem: "system",
			Name:      "invariant_violations_total",
			Help:      "Total vault invariant violations detected in EndBlock",
		},
		[]string{"vault_id", "ledger"},
	)

	c.EndBlockLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ovault",
			Subsystem: "system",
			Name:      "endblock_latency_ms",
			Help:      "EndBlock audit latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{},
	)

	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ovault",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	// Register all metrics
	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	prometheus.MustRegister(c.DepositsTotal)
	prometheus.MustRegister(c.DepositValue)
	prometheus.MustRegister(c.WithdrawalsTotal)
	prometheus.MustRegister(c.WithdrawalValue)

	prometheus.MustRegister(c.ShareSupply)
	prometheus.MustRegister(c.PoolBalance)

	prometheus.MustRegister(c.RoundsActivated)
	prometheus.MustRegister(c.RoundIndex)
	prometheus.MustRegister(c.SettlementsTotal)
	prometheus.MustRegister(c.SettlementValue)

	prometheus.MustRegister(c.BidsTotal)
	prometheus.MustRegister(c.ExercisesTotal)
	prometheus.MustRegister(c.ExerciseValue)

	prometheus.MustRegister(c.FeeFundBalance)
	prometheus.MustRegister(c.FeesCollected)

	prometheus.MustRegister(c.LendingWithdrawals)
	prometheus.MustRegister(c.LendingReturns)
	prometheus.MustRegister(c.LendingShortfall)

	prometheus.MustRegister(c.RefundsPosted)
	prometheus.MustRegister(c.RefundsClaimed)

	prometheus.MustRegister(c.InvariantViolations)
	prometheus.MustRegister(c.EndBlockLatency)
	prometheus.MustRegister(c.BlockHeight)
}

// ============ Recording Helpers ============

// RecordDeposit records a deposit event
func (c *Collector) RecordDeposit(vaultID, denom string, value float64) {
	c.DepositsTotal.WithLabelValues(vaultID).Inc()
	c.DepositValue.WithLabelValues(vaultID, denom).Add(value)
}

// RecordWithdrawal records a withdrawal, claim or harvest
func (c *Collector) RecordWithdrawal(vaultID, kind, denom string, value float64) {
	c.WithdrawalsTotal.WithLabelValues(vaultID, kind).Inc()
	c.WithdrawalValue.WithLabelValues(vaultID, denom).Add(value)
}

// RecordActivation records a round activation
func (c *Collector) RecordActivation(vaultID string, roundIndex uint64) {
	c.RoundsActivated.WithLabelValues(vaultID).Inc()
	c.RoundIndex.WithLabelValues(vaultID).Set(float64(roundIndex))
}

// RecordSettlement records a round settlement
func (c *Collector) RecordSettlement(vaultID string, value float64) {
	c.SettlementsTotal.WithLabelValues(vaultID).Inc()
	c.SettlementValue.WithLabelValues(vaultID).Add(value)
}

// RecordBid records a bid placement
func (c *Collector) RecordBid(vaultID string) {
	c.BidsTotal.WithLabelValues(vaultID).Inc()
}

// RecordExercise records a bid exercise
func (c *Collector) RecordExercise(vaultID, denom string, payoff float64) {
	c.ExercisesTotal.WithLabelValues(vaultID).Inc()
	c.ExerciseValue.WithLabelValues(vaultID, denom).Add(payoff)
}

// RecordFees records collected fees
func (c *Collector) RecordFees(vaultID, denom string, value float64) {
	c.FeesCollected.WithLabelValues(vaultID, denom).Add(value)
}

// RecordFeeFund records a fee fund balance
func (c *Collector) RecordFeeFund(fundID, denom string, balance float64) {
	c.FeeFundBalance.WithLabelValues(fundID, denom).Set(balance)
}

// RecordLending records lending flow events
func (c *Collector) RecordLending(vaultID string, withdrawal bool, shortfall float64) {
	if withdrawal {
		c.LendingWithdrawals.WithLabelValues(vaultID).Inc()
		return
	}
	c.LendingReturns.WithLabelValues(vaultID).Inc()
	if shortfall > 0 {
		c.LendingShortfall.WithLabelValues(vaultID).Add(shortfall)
	}
}

// RecordRefund records refund postings and claims
func (c *Collector) RecordRefund(denom string, claimed bool) {
	if claimed {
		c.RefundsClaimed.WithLabelValues(denom).Inc()
		return
	}
	c.RefundsPosted.WithLabelValues(denom).Inc()
}

// RecordInvariantViolation records a failed ledger audit
func (c *Collector) RecordInvariantViolation(vaultID, ledger string) {
	c.InvariantViolations.WithLabelValues(vaultID, ledger).Inc()
}

// RecordEndBlock records EndBlock audit latency and height
func (c *Collector) RecordEndBlock(blockHeight int64, latencyMs float64) {
	c.BlockHeight.Set(float64(blockHeight))
	c.EndBlockLatency.WithLabelValues().Observe(latencyMs)
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
