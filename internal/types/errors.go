package types

import "errors"

// Expected, caller recoverable outcomes of ledger operations. Token movement
// errors originate in the token gateway and are propagated unchanged.
var (
	ErrInsufficientAllowance       = errors.New("insufficient allowance")
	ErrInsufficientBalance         = errors.New("insufficient balance")
	ErrInsufficientStakedBalance   = errors.New("insufficient staked balance")
	ErrInsufficientContractBalance = errors.New("insufficient contract balance")
	ErrInsufficientTimePassed      = errors.New("insufficient time passed")
	ErrInvalidAmount               = errors.New("amount must be positive")
	ErrUnauthorized                = errors.New("caller is not allowed to perform this operation")
	ErrPoolAccount                 = errors.New("operation not allowed for the pool account")
)
