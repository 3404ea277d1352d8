package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/services"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

// callerHeader carries the account the request acts for.
const callerHeader = "X-Account"

type Handler struct {
	service *services.Service
}

func NewHandler(service *services.Service) *Handler {
	return &Handler{service: service}
}

type Result struct {
	Status int
	Data   any
}

func newResult(data any) *Result {
	return &Result{Status: http.StatusOK, Data: data}
}

type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

type handlerFunc func(r *http.Request) (*Result, *types.Error)

// registerHandler adapts a handlerFunc to http, rendering its result or its
// error as JSON.
func registerHandler(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := f(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, r, result.Status, result.Data)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err *types.Error) {
	if err.StatusCode >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}

	message := err.Err.Error()
	// internal details stay in the log
	if err.ErrorCode == types.InternalServiceError {
		message = "internal service error"
	}

	writeJSON(w, r, err.StatusCode, ErrorResponse{
		ErrorCode: err.ErrorCode.String(),
		Message:   message,
	})
}

func callerFromRequest(r *http.Request) (string, *types.Error) {
	caller := r.Header.Get(callerHeader)
	if caller == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "missing "+callerHeader+" header")
	}
	return caller, nil
}

func decodeBody(r *http.Request, dst any) *types.Error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return types.NewError(http.StatusBadRequest, types.BadRequest, errors.New("invalid request body: "+err.Error()))
	}
	return nil
}
