package api

import (
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 100
)

func parseAmount(s string) (sdkmath.Int, *types.Error) {
	amount, err := types.ParseAmount(s)
	if err != nil {
		return sdkmath.Int{}, types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}
	return amount, nil
}

func accountParam(r *http.Request) string {
	return chi.URLParam(r, "account")
}

func parseLimit(r *http.Request) (int64, *types.Error) {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return defaultEventsLimit, nil
	}

	limit, err := strconv.ParseInt(value, 10, 64)
	if err != nil || limit <= 0 || limit > maxEventsLimit {
		return 0, types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest,
			"limit must be between 1 and "+strconv.Itoa(maxEventsLimit),
		)
	}
	return limit, nil
}
