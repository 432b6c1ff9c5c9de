package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPaymentRejected   = errors.New("payment rejected")
	ErrDepositRejected   = errors.New("deposit rejected")
	ErrTransactionFailed = errors.New("transaction failed")
)
