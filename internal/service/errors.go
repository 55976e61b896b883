package service

import "errors"

var (
	ErrNotFound                 = errors.New("not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidToken             = errors.New("invalid token")
	ErrTokenExpired             = errors.New("token expired")
	ErrOrderNotFound            = errors.New("order not found")
	ErrCommissionNotFound       = errors.New("commission entry not found")
	ErrCommissionClosed         = errors.New("commission entry is closed")
	ErrCommissionPercentInvalid = errors.New("commission percent must be between 0 and 100")
	ErrCommissionBaseInvalid    = errors.New("commission base must not be negative")
	ErrRepresentativeNotFound   = errors.New("representative not found")
	ErrRepresentativeRequired   = errors.New("target representative is required")
	ErrSettlementNotFound       = errors.New("settlement snapshot not found")
	ErrSyncJobNotFound          = errors.New("sync job not found")
	ErrSyncJobNotRunnable       = errors.New("sync job already finished")
	ErrInvalidAction            = errors.New("invalid commission action")
	ErrTransferTargetRequired   = errors.New("entry_id or pedido_id is required")
	ErrQueueUnavailable         = errors.New("queue unavailable")
)

var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
