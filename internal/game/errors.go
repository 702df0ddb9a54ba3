package game

import errorsmod "cosmossdk.io/errors"

// Round sentinel errors. Call sites wrap one of these with context; callers
// match the class with errors.Is.
var (
	ErrUnauthorized   = errorsmod.Register(ModuleName, 2, "caller is not the authority")
	ErrWrongPhase     = errorsmod.Register(ModuleName, 3, "operation not allowed in current phase")
	ErrInvalidRequest = errorsmod.Register(ModuleName, 4, "invalid request")
	ErrCommitMismatch = errorsmod.Register(ModuleName, 5, "reveal does not match commitment")
	ErrStateConflict  = errorsmod.Register(ModuleName, 6, "state conflict")
	ErrNotEntitled    = errorsmod.Register(ModuleName, 7, "not entitled")
	ErrTransferFailed = errorsmod.Register(ModuleName, 8, "value transfer failed")
)
