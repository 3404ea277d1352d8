package api

import (
	"net/http"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

type TransferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BalancePublic struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
	// Allowance the pool may still pull from the account.
	Allowance string `json:"allowance"`
}

func (h *Handler) Approve(r *http.Request) (*Result, *types.Error) {
	caller, err := callerFromRequest(r)
	if err != nil {
		return nil, err
	}
	req, err := parseAmountRequest(r)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	if err := h.service.Approve(r.Context(), caller, amount); err != nil {
		return nil, err
	}
	return h.balance(r, caller)
}

func (h *Handler) Transfer(r *http.Request) (*Result, *types.Error) {
	caller, err := callerFromRequest(r)
	if err != nil {
		return nil, err
	}
	var req TransferRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	if err := h.service.Transfer(r.Context(), caller, req.To, amount); err != nil {
		return nil, err
	}
	return h.balance(r, caller)
}

func (h *Handler) GetTokenBalance(r *http.Request) (*Result, *types.Error) {
	return h.balance(r, accountParam(r))
}

func (h *Handler) balance(r *http.Request, account string) (*Result, *types.Error) {
	balance, err := h.service.GetTokenBalance(r.Context(), account)
	if err != nil {
		return nil, err
	}
	allowance, err := h.service.GetAllowance(r.Context(), account)
	if err != nil {
		return nil, err
	}

	return newResult(&BalancePublic{
		Account:   account,
		Balance:   types.FormatAmount(balance),
		Allowance: types.FormatAmount(allowance),
	}), nil
}
