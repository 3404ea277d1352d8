package api

import (
	"net/http"

	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

type AmountRequest struct {
	// Amount in tokens, up to 18 decimals ("1.5").
	Amount string `json:"amount"`
}

type ReceiptPublic struct {
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	Reward    string `json:"reward"`
	Shortfall string `json:"shortfall,omitempty"`
	Principal string `json:"principal"`
	Timestamp int64  `json:"timestamp"`
}

func newReceiptPublic(receipt *ledger.Receipt) *ReceiptPublic {
	public := &ReceiptPublic{
		Account:   receipt.Account,
		Amount:    types.FormatAmount(receipt.Amount),
		Reward:    types.FormatAmount(receipt.Reward),
		Principal: types.FormatAmount(receipt.Principal),
		Timestamp: receipt.Timestamp,
	}
	if receipt.Shortfall.IsPositive() {
		public.Shortfall = types.FormatAmount(receipt.Shortfall)
	}
	return public
}

func parseAmountRequest(r *http.Request) (*AmountRequest, *types.Error) {
	var req AmountRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// amountOperation handles the operations taking a caller and an amount.
func (h *Handler) amountOperation(
	r *http.Request,
	op func(caller string, req *AmountRequest) (*ledger.Receipt, *types.Error),
) (*Result, *types.Error) {
	caller, err := callerFromRequest(r)
	if err != nil {
		return nil, err
	}
	req, err := parseAmountRequest(r)
	if err != nil {
		return nil, err
	}

	receipt, err := op(caller, req)
	if err != nil {
		return nil, err
	}
	return newResult(newReceiptPublic(receipt)), nil
}

func (h *Handler) Fund(r *http.Request) (*Result, *types.Error) {
	return h.amountOperation(r, func(caller string, req *AmountRequest) (*ledger.Receipt, *types.Error) {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		return h.service.Fund(r.Context(), caller, amount)
	})
}

func (h *Handler) Stake(r *http.Request) (*Result, *types.Error) {
	return h.amountOperation(r, func(caller string, req *AmountRequest) (*ledger.Receipt, *types.Error) {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		return h.service.Stake(r.Context(), caller, amount)
	})
}

func (h *Handler) Unstake(r *http.Request) (*Result, *types.Error) {
	return h.amountOperation(r, func(caller string, req *AmountRequest) (*ledger.Receipt, *types.Error) {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		return h.service.Unstake(r.Context(), caller, amount)
	})
}

func (h *Handler) CompoundRewards(r *http.Request) (*Result, *types.Error) {
	caller, err := callerFromRequest(r)
	if err != nil {
		return nil, err
	}

	receipt, err := h.service.CompoundRewards(r.Context(), caller)
	if err != nil {
		return nil, err
	}
	return newResult(newReceiptPublic(receipt)), nil
}

func (h *Handler) ClaimReward(r *http.Request) (*Result, *types.Error) {
	caller, err := callerFromRequest(r)
	if err != nil {
		return nil, err
	}

	receipt, err := h.service.ClaimReward(r.Context(), caller)
	if err != nil {
		return nil, err
	}
	return newResult(newReceiptPublic(receipt)), nil
}
