package api

import (
	"net/http"

	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

type StakerPublic struct {
	Account    string `json:"account"`
	Principal  string `json:"principal"`
	Staked     bool   `json:"staked"`
	LastUpdate int64  `json:"lastUpdate,omitempty"`
	FirstStake int64  `json:"firstStake,omitempty"`
}

type RewardsPublic struct {
	Account       string `json:"account"`
	Claimable     string `json:"claimable"`
	Compoundable  string `json:"compoundable"`
	ElapsedEpochs uint64 `json:"elapsedEpochs"`
}

type PoolPublic struct {
	TotalStaked      string `json:"totalStaked"`
	AvailableRewards string `json:"availableRewards"`
	RewardShortfall  string `json:"rewardShortfall"`
	ContractBalance  string `json:"contractBalance"`
	Funder           string `json:"funder"`
	PoolAccount      string `json:"poolAccount"`
}

type EventPublic struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Reward    string `json:"reward"`
	Principal string `json:"principal"`
	Timestamp int64  `json:"timestamp"`
}

func (h *Handler) HealthCheck(r *http.Request) (*Result, *types.Error) {
	if err := h.service.DoHealthCheck(r.Context()); err != nil {
		return nil, types.NewErrorWithMsg(http.StatusServiceUnavailable, types.InternalServiceError, err.Error())
	}
	return newResult("Server is up and running"), nil
}

func (h *Handler) GetStaker(r *http.Request) (*Result, *types.Error) {
	staker, err := h.service.GetStaker(r.Context(), accountParam(r))
	if err != nil {
		return nil, err
	}

	return newResult(&StakerPublic{
		Account:    staker.Account,
		Principal:  types.FormatAmount(staker.Principal),
		Staked:     staker.Staked,
		LastUpdate: staker.LastUpdate,
		FirstStake: staker.FirstStake,
	}), nil
}

func (h *Handler) GetRewards(r *http.Request) (*Result, *types.Error) {
	rewards, err := h.service.GetRewards(r.Context(), accountParam(r))
	if err != nil {
		return nil, err
	}

	return newResult(&RewardsPublic{
		Account:       rewards.Account,
		Claimable:     types.FormatAmount(rewards.Continuous),
		Compoundable:  types.FormatAmount(rewards.Compounded),
		ElapsedEpochs: rewards.ElapsedEpochs,
	}), nil
}

func (h *Handler) GetPool(r *http.Request) (*Result, *types.Error) {
	pool, err := h.service.GetPool(r.Context())
	if err != nil {
		return nil, err
	}

	return newResult(&PoolPublic{
		TotalStaked:      types.FormatAmount(pool.TotalStaked),
		AvailableRewards: types.FormatAmount(pool.AvailableRewards),
		RewardShortfall:  types.FormatAmount(pool.RewardShortfall),
		ContractBalance:  types.FormatAmount(pool.ContractBalance),
		Funder:           pool.Funder,
		PoolAccount:      pool.PoolAccount,
	}), nil
}

func (h *Handler) GetEvents(r *http.Request) (*Result, *types.Error) {
	limit, err := parseLimit(r)
	if err != nil {
		return nil, err
	}

	docs, err := h.service.GetEvents(r.Context(), accountParam(r), limit)
	if err != nil {
		return nil, err
	}

	events := make([]EventPublic, 0, len(docs))
	for _, doc := range docs {
		events = append(events, newEventPublic(doc))
	}
	return newResult(events), nil
}

// newEventPublic renders the base unit amounts of a journaled event.
func newEventPublic(doc *model.LedgerEventDocument) EventPublic {
	event := EventPublic{
		ID:        doc.ID,
		Type:      doc.Type.String(),
		Amount:    doc.Amount,
		Reward:    doc.Reward,
		Principal: doc.Principal,
		Timestamp: doc.Timestamp,
	}
	for _, field := range []*string{&event.Amount, &event.Reward, &event.Principal} {
		if v, err := types.ParseBaseUnits(*field); err == nil {
			*field = types.FormatAmount(v)
		}
	}
	return event
}
