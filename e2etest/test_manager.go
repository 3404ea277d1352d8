//go:build e2e

package e2etest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/staking-ledger/e2etest/container"
	"github.com/babylonlabs-io/staking-ledger/internal/api"
	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/queue"
	"github.com/babylonlabs-io/staking-ledger/internal/services"
)

const (
	poolAccount = "bbn1qyqszqgpqyqszqgpqyqszqgpqyqszqgp9ds0j9"
	funder      = "bbn1qgpqyqszqgpqyqszqgpqyqszqgpqyqsz5fk2en"
	alice       = "bbn1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcr4ehtnj"
	bob         = "bbn1qszqgpqyqszqgpqyqszqgpqyqszqgpqy4fsw5w"
)

var (
	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 500 * time.Millisecond
)

// TestManager owns the containers shared by every ledger instance of a test.
type TestManager struct {
	Config  *config.Config
	manager *container.Manager
	// Events receives every ledger event published to the exchange.
	Events <-chan amqp.Delivery
	conn   *amqp.Connection
}

// LedgerInstance is one running ledger process: service, pollers and HTTP server.
type LedgerInstance struct {
	Clock     *ledger.ManualClock
	Server    *httptest.Server
	DbClient  *db.Database
	publisher *queue.QueueManager
	cancel    context.CancelFunc
	done      chan struct{}
}

func DefaultLedgerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Db: config.DbConfig{
			Username: container.Username,
			Password: container.Password,
			DbName:   "staking-ledger",
		},
		Metrics: config.MetricsConfig{
			Host: "0.0.0.0",
			Port: 2112,
		},
		Poller: config.PollerConfig{
			CheckpointInterval: time.Second,
			StatsInterval:      time.Second,
		},
		Ledger: config.LedgerConfig{
			AddressPrefix: "bbn",
			PoolAccount:   poolAccount,
			Funder:        funder,
			Genesis: []config.GenesisAllocation{
				{Account: funder, Amount: "1000"},
				{Account: alice, Amount: "100"},
				{Account: bob, Amount: "100"},
			},
		},
		Queue: &config.QueueConfig{
			QueueUser:        container.Username,
			QueuePassword:    container.Password,
			Exchange:         "staking-ledger-events",
			PublishTimeout:   5 * time.Second,
			MaxRetryAttempts: 3,
			RetryInterval:    500 * time.Millisecond,
		},
	}
}

// StartManager starts mongo and rabbitmq and subscribes to the event exchange.
func StartManager(t *testing.T) *TestManager {
	manager, err := container.NewManager()
	require.NoError(t, err)

	cfg := DefaultLedgerConfig()
	cfg.Db.Address = manager.RunMongoResource(t)
	cfg.Queue.Url = manager.RunRabbitMQResource(t)
	require.NoError(t, cfg.Validate())

	err = manager.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return model.Setup(ctx, &cfg.Db)
	})
	require.NoError(t, err)

	var conn *amqp.Connection
	err = manager.Retry(func() error {
		var err error
		conn, err = amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s", container.Username, container.Password, cfg.Queue.Url))
		return err
	})
	require.NoError(t, err)

	ch, err := conn.Channel()
	require.NoError(t, err)
	require.NoError(t, ch.ExchangeDeclare(cfg.Queue.Exchange, "topic", true, false, false, false, nil))
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "#", cfg.Queue.Exchange, false, nil))
	events, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	return &TestManager{
		Config:  cfg,
		manager: manager,
		Events:  events,
		conn:    conn,
	}
}

// StartLedger boots a ledger against the shared database, restoring the last
// checkpoint if one was written.
func (tm *TestManager) StartLedger(t *testing.T, now time.Time) *LedgerInstance {
	ctx, cancel := context.WithCancel(context.Background())

	dbClient, err := db.New(ctx, tm.Config.Db)
	require.NoError(t, err)

	publisher, err := queue.NewQueueManager(tm.Config.Queue)
	require.NoError(t, err)

	token := tokenclient.NewMemoryToken(tm.Config.Ledger.PoolAccount)
	clock := ledger.NewManualClock(now)
	stakeLedger := ledger.New(tokenclient.NewTokenGatewayWithMetrics(token), clock, tm.Config.Ledger.Funder)

	service := services.NewService(tm.Config, db.NewDbWithMetrics(dbClient), stakeLedger, token, publisher)
	require.NoError(t, service.Bootstrap(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		service.StartPollers(ctx)
	}()

	return &LedgerInstance{
		Clock:     clock,
		Server:    httptest.NewServer(api.New(tm.Config, service).Handler()),
		DbClient:  dbClient,
		publisher: publisher,
		cancel:    cancel,
		done:      done,
	}
}

// Stop shuts the instance down; the pollers write a final checkpoint.
func (li *LedgerInstance) Stop(t *testing.T) {
	li.Server.Close()
	li.cancel()

	select {
	case <-li.done:
	case <-time.After(eventuallyWaitTimeOut):
		t.Fatal("ledger pollers did not stop")
	}

	li.publisher.Shutdown()
	require.NoError(t, li.DbClient.Close(context.Background()))
}

func (li *LedgerInstance) Do(t *testing.T, method, path, caller, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(method, li.Server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if caller != "" {
		req.Header.Set("X-Account", caller)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := li.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

func (tm *TestManager) Stop(t *testing.T) {
	require.NoError(t, tm.conn.Close())
	require.NoError(t, tm.manager.ClearResources())
}
