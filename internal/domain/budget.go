/**
 * @description
 * Domain models for the user registry and personal budget bookkeeping: users,
 * budgets, and expense/income entries. These are plain records with no
 * arithmetic beyond running totals; the accounting core does not depend on
 * them.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered user of the ledger. The API layer resolves the caller
// identity from a validated JWT; the core only ever sees the UUID.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BudgetEntryKind tags a budget entry as money out or money in.
type BudgetEntryKind string

const (
	BudgetExpense BudgetEntryKind = "expense"
	BudgetIncome  BudgetEntryKind = "income"
)

// BudgetEntry is one recorded expense or income line.
type BudgetEntry struct {
	ID          uuid.UUID       `json:"id"`
	BudgetID    uuid.UUID       `json:"budget_id"`
	Kind        BudgetEntryKind `json:"kind"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      int64           `json:"amount"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// Budget is a user's bookkeeping container. TotalExpenses and TotalIncome are
// running sums maintained as entries are recorded.
type Budget struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	TimeframeDays int       `json:"timeframe_days"`
	TotalExpenses int64     `json:"total_expenses"`
	TotalIncome   int64     `json:"total_income"`
	CreatedAt     time.Time `json:"created_at"`
}

// BudgetSummary is the net position of a budget for API responses.
type BudgetSummary struct {
	BudgetID      uuid.UUID `json:"budget_id"`
	Name          string    `json:"name"`
	TotalExpenses int64     `json:"total_expenses"`
	TotalIncome   int64     `json:"total_income"`
	Net           int64     `json:"net"`
}
