package metrics

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}

var (
	once          sync.Once
	metricsRouter *chi.Mux
)

// Collectors exist before Init so recording never needs a nil check. Init
// registers them and starts serving.
var (
	ledgerOperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Histogram of ledger operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)
	tokenGatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_gateway_latency_seconds",
			Help:    "Histogram of token gateway call durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)
	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "route", "status"},
	)
	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)
	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending ledger events to the queue",
		},
	)
	totalStakedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_total_staked_tokens",
			Help: "Total principal staked in the pool, in whole tokens",
		},
	)
	availableRewardsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_available_rewards_tokens",
			Help: "Funded rewards available for payouts, in whole tokens",
		},
	)
	rewardShortfallGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_reward_shortfall_tokens",
			Help: "Rewards folded into principal without reward pool backing, in whole tokens",
		},
	)
	contractBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_contract_balance_tokens",
			Help: "Tokens held by the pool account, in whole tokens",
		},
	)
	invariantViolationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_invariant_violation_count",
			Help: "Number of times the stats poller found the ledger accounting inconsistent",
		},
	)
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus collectors.
func registerMetrics() {
	prometheus.MustRegister(
		ledgerOperationLatency,
		tokenGatewayLatency,
		httpRequestDurationHistogram,
		pollerDurationHistogram,
		dbLatency,
		queueSendErrorCounter,
		totalStakedGauge,
		availableRewardsGauge,
		rewardShortfallGauge,
		contractBalanceGauge,
		invariantViolationCounter,
	)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

func RecordLedgerOperation(d time.Duration, operation string, failure bool) {
	ledgerOperationLatency.WithLabelValues(operation, outcome(failure).String()).Observe(d.Seconds())
}

func RecordTokenGatewayLatency(d time.Duration, method string, failure bool) {
	tokenGatewayLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordHttpRequest(d time.Duration, method, route string, statusCode int) {
	httpRequestDurationHistogram.WithLabelValues(method, route, strconv.Itoa(statusCode)).Observe(d.Seconds())
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}

func IncInvariantViolations() {
	invariantViolationCounter.Inc()
}

// RecordPoolState exports the pool totals. Gauges are float, the values are
// approximations of the exact base unit amounts.
func RecordPoolState(totalStaked, availableRewards, rewardShortfall, contractBalance sdkmath.Int) {
	totalStakedGauge.Set(toTokens(totalStaked))
	availableRewardsGauge.Set(toTokens(availableRewards))
	rewardShortfallGauge.Set(toTokens(rewardShortfall))
	contractBalanceGauge.Set(toTokens(contractBalance))
}

var baseUnitsPerToken = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

func toTokens(v sdkmath.Int) float64 {
	if v.IsNil() {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v.BigInt()), baseUnitsPerToken).Float64()
	return f
}
