/**
 * @description
 * In-memory implementation of the Repository interface, used by tests and as
 * a development fallback when no database is configured. Aggregates are
 * stored as JSON-encoded snapshots so that callers never share mutable state
 * with the repository, the same isolation a real database gives.
 */

package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
)

// MemoryRepository keeps all state in process. Safe for concurrent use.
type MemoryRepository struct {
	mu sync.RWMutex

	users     map[uuid.UUID][]byte
	usernames map[string]uuid.UUID
	accounts  map[uuid.UUID][]byte
	// ownerAccounts indexes the single active account per owner.
	ownerAccounts map[uuid.UUID]uuid.UUID
	goals         map[uuid.UUID][]byte
	campaigns     map[uuid.UUID][]byte
	groups        map[uuid.UUID][]byte
	budgets       map[uuid.UUID][]byte
	ownerBudgets  map[uuid.UUID]uuid.UUID
	entries       map[uuid.UUID][]domain.BudgetEntry
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[uuid.UUID][]byte),
		usernames:     make(map[string]uuid.UUID),
		accounts:      make(map[uuid.UUID][]byte),
		ownerAccounts: make(map[uuid.UUID]uuid.UUID),
		goals:         make(map[uuid.UUID][]byte),
		campaigns:     make(map[uuid.UUID][]byte),
		groups:        make(map[uuid.UUID][]byte),
		budgets:       make(map[uuid.UUID][]byte),
		ownerBudgets:  make(map[uuid.UUID]uuid.UUID),
		entries:       make(map[uuid.UUID][]domain.BudgetEntry),
	}
}

func snapshot(v interface{}) []byte {
	b, _ := json.Marshal(v)
	return b
}

func restore(b []byte, v interface{}) error {
	return json.Unmarshal(b, v)
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(user.Username))
	if _, taken := r.usernames[key]; taken {
		return ErrUsernameTaken
	}
	r.usernames[key] = user.ID
	r.users[user.ID] = snapshot(user)
	return nil
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	var user domain.User
	if err := restore(b, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MemoryRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.usernames[strings.ToLower(strings.TrimSpace(username))]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.FindUserByID(ctx, id)
}

func (r *MemoryRepository) SaveAccount(ctx context.Context, acct *domain.InterestAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[acct.ID] = snapshot(acct)
	if acct.Active {
		r.ownerAccounts[acct.OwnerID] = acct.ID
	} else if r.ownerAccounts[acct.OwnerID] == acct.ID {
		delete(r.ownerAccounts, acct.OwnerID)
	}
	return nil
}

func (r *MemoryRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.InterestAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	var acct domain.InterestAccount
	if err := restore(b, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *MemoryRepository) FindActiveAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.InterestAccount, error) {
	r.mu.RLock()
	id, ok := r.ownerAccounts[ownerID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrAccountNotFound
	}
	return r.FindAccountByID(ctx, id)
}

func (r *MemoryRepository) SaveGoal(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[goal.ID] = snapshot(goal)
	return nil
}

func (r *MemoryRepository) FindGoalByID(ctx context.Context, goalID uuid.UUID) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.goals[goalID]
	if !ok {
		return nil, ErrGoalNotFound
	}
	var goal domain.Goal
	if err := restore(b, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *MemoryRepository) ListGoalsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Goal
	for _, b := range r.goals {
		var goal domain.Goal
		if err := restore(b, &goal); err != nil {
			return nil, err
		}
		if goal.OwnerID == ownerID {
			out = append(out, goal)
		}
	}
	return out, nil
}

func (r *MemoryRepository) SaveCampaign(ctx context.Context, campaign *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[campaign.ID] = snapshot(campaign)
	return nil
}

func (r *MemoryRepository) FindCampaignByID(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.campaigns[campaignID]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	var c domain.Campaign
	if err := restore(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MemoryRepository) ListCampaignsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Campaign
	for _, b := range r.campaigns {
		var c domain.Campaign
		if err := restore(b, &c); err != nil {
			return nil, err
		}
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) SaveGroup(ctx context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.ID] = snapshot(group)
	return nil
}

func (r *MemoryRepository) FindGroupByID(ctx context.Context, groupID uuid.UUID) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	var g domain.Group
	if err := restore(b, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *MemoryRepository) SaveBudget(ctx context.Context, budget *domain.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets[budget.ID] = snapshot(budget)
	r.ownerBudgets[budget.OwnerID] = budget.ID
	return nil
}

func (r *MemoryRepository) FindBudgetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ownerBudgets[ownerID]
	if !ok {
		return nil, ErrBudgetNotFound
	}
	var budget domain.Budget
	if err := restore(r.budgets[id], &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *MemoryRepository) AddBudgetEntry(ctx context.Context, entry *domain.BudgetEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[entry.BudgetID]; !ok {
		return ErrBudgetNotFound
	}
	r.entries[entry.BudgetID] = append(r.entries[entry.BudgetID], *entry)
	return nil
}

func (r *MemoryRepository) ListBudgetEntries(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.entries[budgetID]
	out := make([]domain.BudgetEntry, len(entries))
	copy(out, entries)
	return out, nil
}
