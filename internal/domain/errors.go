package domain

import "errors"

var (
	// Posting errors
	ErrImbalancedTransaction = errors.New("transaction debits and credits do not balance")
	ErrTooFewEntries         = errors.New("transaction requires at least two entries")
	ErrInvalidEntryType      = errors.New("entry type must be debit or credit")
	ErrMissingAccountCode    = errors.New("account code is required")
	ErrInvalidAmount         = errors.New("amount must be non-negative")
	ErrAlreadyPosted         = errors.New("document has already been posted")
	ErrDocumentNotReady      = errors.New("document has not passed extraction validation")

	// Ledger errors
	ErrEntryNotFound          = errors.New("ledger entry not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrReconciliationMismatch = errors.New("entries cannot be reconciled")
	ErrInvalidAccountType     = errors.New("invalid account type")

	// Period close errors
	ErrPeriodCloseNotFound = errors.New("period close not found")
	ErrTaskNotFound        = errors.New("close task not found")
	ErrIncompleteTasks     = errors.New("period close has incomplete tasks")
	ErrInvalidCloseStatus  = errors.New("invalid period close status transition")
	ErrInvalidPeriod       = errors.New("period end must be after period start")
	ErrDuplicateClose      = errors.New("period close already exists for period")

	// Entity and consolidation errors
	ErrEntityNotFound    = errors.New("entity not found")
	ErrInvalidEntityType = errors.New("invalid entity type")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")

	// FX errors
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrProviderFailure = errors.New("exchange rate provider failed")
	ErrUnknownProvider = errors.New("unknown exchange rate provider")

	// Accrual errors
	ErrAccrualNotFound    = errors.New("accrual not found")
	ErrPrepaymentNotFound = errors.New("prepayment not found")

	// Tenancy
	ErrMissingTenant = errors.New("tenant id is required")
)
