package app

import errorsmod "cosmossdk.io/errors"

const Codespace = "app"

var (
	ErrTxDecode     = errorsmod.Register(Codespace, 2, "tx decode error")
	ErrTxAuth       = errorsmod.Register(Codespace, 3, "tx authentication failed")
	ErrUnknownTx    = errorsmod.Register(Codespace, 4, "unknown tx type")
	ErrInvalidTx    = errorsmod.Register(Codespace, 5, "invalid tx")
	ErrBank         = errorsmod.Register(Codespace, 6, "bank operation failed")
	ErrUnknownQuery = errorsmod.Register(Codespace, 7, "unknown query")

	ErrReservedAccount = errorsmod.Register(Codespace, 8, "reserved account")
)
