package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
)

func TestMemoryRepositorySnapshotsIsolateCallers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	acct := &domain.InterestAccount{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Balance: 1000,
		Active:  true,
	}
	if err := repo.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	// Mutating the saved pointer must not leak into the stored snapshot.
	acct.Balance = 0

	got, err := repo.FindAccountByID(ctx, acct.ID)
	if err != nil {
		t.Fatalf("FindAccountByID: %v", err)
	}
	if got.Balance != 1000 {
		t.Errorf("stored balance = %d, want 1000", got.Balance)
	}
}

func TestMemoryRepositoryActiveAccountIndex(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := uuid.New()

	acct := &domain.InterestAccount{ID: uuid.New(), OwnerID: owner, Balance: 500, Active: true}
	if err := repo.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	if _, err := repo.FindActiveAccountByOwner(ctx, owner); err != nil {
		t.Fatalf("FindActiveAccountByOwner: %v", err)
	}

	// Saving the account inactive removes it from the owner index but keeps
	// the record reachable by id.
	acct.Active = false
	if err := repo.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount inactive: %v", err)
	}
	if _, err := repo.FindActiveAccountByOwner(ctx, owner); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("active lookup after deactivation: got %v, want ErrAccountNotFound", err)
	}
	if _, err := repo.FindAccountByID(ctx, acct.ID); err != nil {
		t.Errorf("by-id lookup after deactivation: %v", err)
	}
}

func TestMemoryRepositoryUsernameUniqueness(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := &domain.User{ID: uuid.New(), Username: "Ada", CreatedAt: time.Now()}
	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	dup := &domain.User{ID: uuid.New(), Username: "ada"}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("case-insensitive duplicate: got %v, want ErrUsernameTaken", err)
	}

	found, err := repo.FindUserByUsername(ctx, "  ADA ")
	if err != nil {
		t.Fatalf("FindUserByUsername: %v", err)
	}
	if found.ID != first.ID {
		t.Errorf("found user %s, want %s", found.ID, first.ID)
	}
}

func TestMemoryRepositoryBudgetEntries(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := uuid.New()

	if err := repo.AddBudgetEntry(ctx, &domain.BudgetEntry{ID: uuid.New(), BudgetID: uuid.New()}); !errors.Is(err, ErrBudgetNotFound) {
		t.Fatalf("entry for missing budget: got %v, want ErrBudgetNotFound", err)
	}

	budget := &domain.Budget{ID: uuid.New(), OwnerID: owner, Name: "monthly"}
	if err := repo.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	for i := 0; i < 3; i++ {
		entry := &domain.BudgetEntry{ID: uuid.New(), BudgetID: budget.ID, Kind: domain.BudgetExpense, Amount: 100}
		if err := repo.AddBudgetEntry(ctx, entry); err != nil {
			t.Fatalf("AddBudgetEntry: %v", err)
		}
	}
	entries, err := repo.ListBudgetEntries(ctx, budget.ID)
	if err != nil {
		t.Fatalf("ListBudgetEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}
