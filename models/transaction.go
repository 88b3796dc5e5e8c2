package models

import "time"

// TransactionType categorizes a wallet balance change.
type TransactionType string

const (
	TransactionTypeBet         TransactionType = "bet"
	TransactionTypeWin         TransactionType = "win"
	TransactionTypePush        TransactionType = "push"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeInsurance   TransactionType = "insurance"
	TransactionTypeWork        TransactionType = "work"
	TransactionTypeDaily       TransactionType = "daily"
	TransactionTypeWeekly      TransactionType = "weekly"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdraw    TransactionType = "withdraw"
)

// Transaction is an append-only record of a single wallet change. Every
// credit and debit the coordinator performs produces exactly one entry, so
// the sum of ChangeAmount per user always reconciles with the wallet.
type Transaction struct {
	ID             int64
	UserID         int64
	Type           TransactionType
	ChangeAmount   int64
	WalletBefore   int64
	WalletAfter    int64
	CounterpartyID *int64
	Game           string
	Metadata       map[string]any
	CreatedAt      time.Time
}
