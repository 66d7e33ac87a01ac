package equityledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// Initialization errors
	ErrAlreadyInitialized = errors.New("equityledger: already initialized")
	ErrNotInitialized     = errors.New("equityledger: not initialized")

	// Company errors
	ErrCompanyNotFound = errors.New("equityledger: company not found")

	// Campaign errors
	ErrCampaignExists   = errors.New("equityledger: campaign already exists")
	ErrCampaignNotFound = errors.New("equityledger: campaign not found")
	ErrCampaignInactive = errors.New("equityledger: campaign is not active")
	ErrDeadlinePassed   = errors.New("equityledger: campaign deadline has passed")
	ErrDeadlineInvalid  = errors.New("equityledger: campaign deadline is not in the future")

	// Amount and investment errors
	ErrInvalidAmount      = errors.New("equityledger: amount must be positive")
	ErrInvestmentTooSmall = errors.New("equityledger: investment below campaign minimum")
	ErrInvestmentTooLarge = errors.New("equityledger: investment exceeds campaign capacity")

	// Authorization errors
	ErrUnauthorized = errors.New("equityledger: unauthorized")

	// Withdrawal errors
	ErrCannotWithdraw = errors.New("equityledger: withdrawal conditions not met")

	// Balance and transfer errors
	ErrInsufficientBalance = errors.New("equityledger: insufficient balance")
	ErrTransferFailed      = errors.New("equityledger: asset transfer failed")
	ErrAssetNotFound       = errors.New("equityledger: asset not registered")

	// Store errors
	ErrStoreNotReady   = errors.New("equityledger: store not ready")
	ErrStoreClosed     = errors.New("equityledger: store is closed")
	ErrMigrationFailed = errors.New("equityledger: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("equityledger: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrCampaignNotFound) ||
		errors.Is(err, ErrAssetNotFound)
}

// IsValidation returns true if the error indicates rejected input.
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvestmentTooSmall) ||
		errors.Is(err, ErrInvestmentTooLarge) ||
		errors.Is(err, ErrDeadlineInvalid) {
		return true
	}
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsAuthorization returns true if the error is an authorization failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsStateConflict returns true if the error reflects a lifecycle state
// that forbids the operation, as opposed to bad input.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized) ||
		errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrCampaignExists) ||
		errors.Is(err, ErrCampaignInactive) ||
		errors.Is(err, ErrDeadlinePassed) ||
		errors.Is(err, ErrCannotWithdraw)
}

// IsTransfer returns true if the error came from an asset movement,
// either a failed external transfer or an insufficient balance.
func IsTransfer(err error) bool {
	return errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrInsufficientBalance)
}

// IsRetryable returns true if the error is temporary and the operation
// can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
