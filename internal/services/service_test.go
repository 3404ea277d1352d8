package services

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/rewards"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
	"github.com/babylonlabs-io/staking-ledger/tests/mocks"
)

const (
	poolAccount = "bbn1qyqszqgpqyqszqgpqyqszqgpqyqszqgp9ds0j9"
	funder      = "bbn1qgpqyqszqgpqyqszqgpqyqszqgpqyqsz5fk2en"
	alice       = "bbn1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcr4ehtnj"
	bob         = "bbn1qszqgpqyqszqgpqyqszqgpqyqszqgpqy4fsw5w"

	week = rewards.SecondsPerWeek * time.Second
)

type testEnv struct {
	service   *Service
	token     *tokenclient.MemoryToken
	clock     *ledger.ManualClock
	db        *mocks.DbInterface
	publisher *mocks.Publisher

	mu     sync.Mutex
	events []*types.LedgerEvent
}

func (e *testEnv) publishedEvents() []*types.LedgerEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*types.LedgerEvent(nil), e.events...)
}

func testConfig() *config.Config {
	return &config.Config{
		Poller: config.PollerConfig{
			CheckpointInterval: time.Minute,
			StatsInterval:      time.Minute,
		},
		Ledger: config.LedgerConfig{
			AddressPrefix: "bbn",
			PoolAccount:   poolAccount,
			Funder:        funder,
			Genesis: []config.GenesisAllocation{
				{Account: funder, Amount: "500"},
				{Account: alice, Amount: "1000"},
				{Account: bob, Amount: "0.5"},
			},
		},
	}
}

// newTestEnv returns a bootstrapped service whose journal and publisher
// accept every event.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := newBareTestEnv(t)
	env.db.On("GetLatestCheckpoint", mock.Anything).
		Return(nil, &db.NotFoundError{Message: "not found"}).Once()
	env.db.On("SaveLedgerEvent", mock.Anything, mock.Anything).Return(nil).Maybe()
	env.publisher.On("PublishLedgerEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.events = append(env.events, args.Get(1).(*types.LedgerEvent))
		}).
		Return(nil).Maybe()

	require.NoError(t, env.service.Bootstrap(t.Context()))
	return env
}

func newBareTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	token := tokenclient.NewMemoryToken(cfg.Ledger.PoolAccount)
	clock := ledger.NewManualClock(time.Unix(1_700_000_000, 0))
	l := ledger.New(token, clock, cfg.Ledger.Funder)
	dbMock := mocks.NewDbInterface(t)
	publisher := mocks.NewPublisher(t)

	return &testEnv{
		service:   NewService(cfg, dbMock, l, token, publisher),
		token:     token,
		clock:     clock,
		db:        dbMock,
		publisher: publisher,
	}
}

func tokens(n int64) sdkmath.Int {
	return types.TokensToBaseUnits(n)
}

func requireErrorCode(t *testing.T, err *types.Error, status int, code types.ErrorCode) {
	t.Helper()
	require.NotNil(t, err)
	assert.Equal(t, status, err.StatusCode)
	assert.Equal(t, code, err.ErrorCode)
}

func TestFund(t *testing.T) {
	ctx := t.Context()

	t.Run("only the funder", func(t *testing.T) {
		env := newTestEnv(t)
		require.Nil(t, env.service.Approve(ctx, alice, tokens(10)))

		_, err := env.service.Fund(ctx, alice, tokens(10))
		requireErrorCode(t, err, http.StatusForbidden, types.Forbidden)
		assert.ErrorIs(t, err, types.ErrUnauthorized)
		assert.True(t, env.service.GetAvailableRewards(ctx).IsZero())
	})
	t.Run("invalid caller", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Fund(ctx, "cosmos1qyqszqgpqyqszqgpqyqszqgpqyqszqgpjnp7du", tokens(10))
		requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)
	})
	t.Run("without allowance", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Fund(ctx, funder, tokens(10))
		requireErrorCode(t, err, http.StatusUnprocessableEntity, types.InsufficientAllowance)
		assert.Empty(t, env.publishedEvents())
	})
	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t)
		require.Nil(t, env.service.Approve(ctx, funder, tokens(10)))

		receipt, err := env.service.Fund(ctx, funder, tokens(10))
		require.Nil(t, err)
		assert.True(t, tokens(10).Equal(receipt.Amount))
		assert.True(t, tokens(10).Equal(env.service.GetAvailableRewards(ctx)))

		events := env.publishedEvents()
		require.Len(t, events, 1)
		assert.Equal(t, types.EventFunded, events[0].Type)
		assert.Equal(t, funder, events[0].Account)
		assert.Equal(t, tokens(10).String(), events[0].Amount)
		env.db.AssertCalled(t, "SaveLedgerEvent", mock.Anything, mock.MatchedBy(func(doc *model.LedgerEventDocument) bool {
			return doc.ID == events[0].ID && doc.Type == types.EventFunded
		}))
	})
}

func TestStakingFlow(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)
	s := env.service

	require.Nil(t, s.Approve(ctx, funder, tokens(100)))
	_, err := s.Fund(ctx, funder, tokens(100))
	require.Nil(t, err)

	require.Nil(t, s.Approve(ctx, alice, tokens(1000)))
	_, err = s.Stake(ctx, alice, tokens(1000))
	require.Nil(t, err)

	allowance, err := s.GetAllowance(ctx, alice)
	require.Nil(t, err)
	assert.True(t, allowance.IsZero())

	_, err = s.CompoundRewards(ctx, alice)
	requireErrorCode(t, err, http.StatusConflict, types.InsufficientTimePassed)

	env.clock.Advance(2*week + time.Hour)
	r, err := s.GetRewards(ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, uint64(2), r.ElapsedEpochs)
	assert.True(t, r.Continuous.GT(r.Compounded))

	receipt, err := s.CompoundRewards(ctx, alice)
	require.Nil(t, err)
	assert.True(t, r.Compounded.Equal(receipt.Reward))
	assert.True(t, tokens(1000).Add(r.Compounded).Equal(receipt.Principal))

	env.clock.Advance(time.Hour)
	claimable := env.service.ledger.CalculateRewards(alice)
	receipt, err = s.ClaimReward(ctx, alice)
	require.Nil(t, err)
	assert.True(t, claimable.Equal(receipt.Reward))

	balance, err := s.GetTokenBalance(ctx, alice)
	require.Nil(t, err)
	assert.True(t, claimable.Equal(balance))

	_, err = s.Unstake(ctx, alice, tokens(2000))
	requireErrorCode(t, err, http.StatusUnprocessableEntity, types.InsufficientStakedBalance)

	receipt, err = s.Unstake(ctx, alice, tokens(400))
	require.Nil(t, err)
	staked, err := s.GetStakedAmount(ctx, alice)
	require.Nil(t, err)
	assert.True(t, receipt.Principal.Equal(staked))

	staker, err := s.GetStaker(ctx, alice)
	require.Nil(t, err)
	assert.True(t, staker.Staked)
	assert.Equal(t, int64(1_700_000_000), staker.FirstStake)

	pool, err := s.GetPool(ctx)
	require.Nil(t, err)
	assert.True(t, staked.Equal(pool.TotalStaked))
	assert.True(t, pool.TotalStaked.Add(pool.AvailableRewards).Equal(pool.ContractBalance))
	assert.Equal(t, poolAccount, pool.PoolAccount)

	contractBalance, err := s.GetContractBalance(ctx)
	require.Nil(t, err)
	assert.True(t, pool.ContractBalance.Equal(contractBalance))
	assert.True(t, contractBalance.Equal(env.token.Snapshot().Balances[poolAccount]))

	var eventTypes []types.EventType
	previousID := ""
	for _, event := range env.publishedEvents() {
		eventTypes = append(eventTypes, event.Type)
		assert.Greater(t, event.ID, previousID)
		previousID = event.ID
	}
	assert.Equal(t, []types.EventType{
		types.EventFunded,
		types.EventStaked,
		types.EventRewardsCompounded,
		types.EventRewardClaimed,
		types.EventUnstaked,
	}, eventTypes)

	require.NoError(t, s.updatePoolStats(ctx))
}

func TestEventFailuresDoNotFailOperation(t *testing.T) {
	ctx := t.Context()
	env := newBareTestEnv(t)
	env.db.On("GetLatestCheckpoint", mock.Anything).Return(nil, &db.NotFoundError{}).Once()
	require.NoError(t, env.service.Bootstrap(ctx))

	env.db.On("SaveLedgerEvent", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	env.publisher.On("PublishLedgerEvent", mock.Anything, mock.Anything).Return(errors.New("queue down")).Once()

	require.Nil(t, env.service.Approve(ctx, alice, tokens(1)))
	receipt, err := env.service.Stake(ctx, alice, tokens(1))
	require.Nil(t, err)
	assert.True(t, tokens(1).Equal(receipt.Principal))
}

func TestPoolAccountCannotStake(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)
	s := env.service

	require.Nil(t, s.Approve(ctx, alice, tokens(100)))
	_, err := s.Stake(ctx, alice, tokens(100))
	require.Nil(t, err)
	eventCount := len(env.publishedEvents())

	err = s.Approve(ctx, poolAccount, tokens(100))
	requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)
	assert.ErrorIs(t, err, types.ErrPoolAccount)

	// an allowance set behind the service's back does not help either
	require.NoError(t, env.token.Approve(poolAccount, poolAccount, tokens(100)))

	_, err = s.Stake(ctx, poolAccount, tokens(100))
	requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)
	_, err = s.Unstake(ctx, poolAccount, tokens(1))
	requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)
	_, err = s.CompoundRewards(ctx, poolAccount)
	requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)
	_, err = s.ClaimReward(ctx, poolAccount)
	requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)

	assert.True(t, tokens(100).Equal(s.GetTotalStaked(ctx)))
	holdings, err := s.GetContractBalance(ctx)
	require.Nil(t, err)
	assert.True(t, tokens(100).Equal(holdings))
	assert.Len(t, env.publishedEvents(), eventCount)
	require.NoError(t, s.updatePoolStats(ctx))
}

func TestTransfer(t *testing.T) {
	ctx := t.Context()
	env := newTestEnv(t)

	err := env.service.Transfer(ctx, alice, poolAccount, tokens(1))
	requireErrorCode(t, err, http.StatusBadRequest, types.BadRequest)

	err = env.service.Transfer(ctx, bob, alice, tokens(1))
	requireErrorCode(t, err, http.StatusUnprocessableEntity, types.InsufficientBalance)

	require.Nil(t, env.service.Transfer(ctx, alice, bob, tokens(1)))
	balance, err := env.service.GetTokenBalance(ctx, bob)
	require.Nil(t, err)
	assert.True(t, tokens(1).Add(tokens(1).QuoRaw(2)).Equal(balance))
}

func TestGetEvents(t *testing.T) {
	ctx := t.Context()
	env := newBareTestEnv(t)

	docs := []*model.LedgerEventDocument{{ID: "1", Account: alice, Type: types.EventStaked}}
	env.db.On("FindLedgerEventsByAccount", mock.Anything, alice, int64(10)).Return(docs, nil).Once()
	env.db.On("FindLedgerEventsByAccount", mock.Anything, bob, int64(10)).Return(nil, errors.New("db down")).Once()

	events, err := env.service.GetEvents(ctx, alice, 10)
	require.Nil(t, err)
	assert.Equal(t, docs, events)

	_, err = env.service.GetEvents(ctx, bob, 10)
	requireErrorCode(t, err, http.StatusInternalServerError, types.InternalServiceError)
}
