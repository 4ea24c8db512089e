/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the ledger service needs. Keeping it an interface decouples the
 * business logic from the storage backend: production runs on PostgreSQL,
 * tests and local development on the in-memory implementation.
 *
 * Aggregates (accounts, goals, campaigns, groups) are loaded whole, mutated
 * by the accounting core, and saved whole; the repository never mutates
 * aggregate internals itself.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrAccountNotFound  = errors.New("savings account not found")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrBudgetNotFound   = errors.New("budget not found")
)

// Repository defines the set of methods for interacting with persisted state.
type Repository interface {
	// User registry
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Savings accounts
	SaveAccount(ctx context.Context, acct *domain.InterestAccount) error
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.InterestAccount, error)
	FindActiveAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.InterestAccount, error)

	// Goals
	SaveGoal(ctx context.Context, goal *domain.Goal) error
	FindGoalByID(ctx context.Context, goalID uuid.UUID) (*domain.Goal, error)
	ListGoalsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Goal, error)

	// Campaigns
	SaveCampaign(ctx context.Context, campaign *domain.Campaign) error
	FindCampaignByID(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error)
	ListCampaignsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Campaign, error)

	// Contribution groups
	SaveGroup(ctx context.Context, group *domain.Group) error
	FindGroupByID(ctx context.Context, groupID uuid.UUID) (*domain.Group, error)

	// Budget bookkeeping
	SaveBudget(ctx context.Context, budget *domain.Budget) error
	FindBudgetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Budget, error)
	AddBudgetEntry(ctx context.Context, entry *domain.BudgetEntry) error
	ListBudgetEntries(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetEntry, error)
}
