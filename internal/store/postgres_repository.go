/**
 * @description
 * PostgreSQL implementation of the Repository interface. Aggregates are
 * persisted as JSONB state documents alongside a few indexed columns (owner,
 * active flag) that the lookup queries need; the accounting core is the only
 * writer of aggregate internals, so the state column is always saved whole.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockbudget/ledger-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`,
		user.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO users (id, username, display_name, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.DisplayName, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, display_name, created_at FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Username, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, display_name, created_at FROM users WHERE lower(username) = lower(btrim($1))`,
		username).Scan(&user.ID, &user.Username, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// saveAggregate upserts one aggregate row keyed by id.
func (r *PostgresRepository) saveAggregate(ctx context.Context, table string, id, ownerID uuid.UUID, active bool, state interface{}) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode %s state: %w", table, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, active, state, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET active = $3, state = $4, updated_at = now()`, table)
	if _, err := r.db.Exec(ctx, query, id, ownerID, active, doc); err != nil {
		return fmt.Errorf("failed to save %s: %w", table, err)
	}
	return nil
}

func (r *PostgresRepository) loadAggregate(ctx context.Context, table string, id uuid.UUID, state interface{}, notFound error) error {
	var doc []byte
	query := fmt.Sprintf(`SELECT state FROM %s WHERE id = $1`, table)
	if err := r.db.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if err == pgx.ErrNoRows {
			return notFound
		}
		return err
	}
	return json.Unmarshal(doc, state)
}

func (r *PostgresRepository) SaveAccount(ctx context.Context, acct *domain.InterestAccount) error {
	return r.saveAggregate(ctx, "savings_accounts", acct.ID, acct.OwnerID, acct.Active, acct)
}

func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.InterestAccount, error) {
	var acct domain.InterestAccount
	if err := r.loadAggregate(ctx, "savings_accounts", accountID, &acct, ErrAccountNotFound); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *PostgresRepository) FindActiveAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.InterestAccount, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM savings_accounts WHERE owner_id = $1 AND active = true`,
		ownerID).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	var acct domain.InterestAccount
	if err := json.Unmarshal(doc, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *PostgresRepository) SaveGoal(ctx context.Context, goal *domain.Goal) error {
	active := goal.Status == domain.GoalActive || goal.Status == domain.GoalPaused
	return r.saveAggregate(ctx, "goals", goal.ID, goal.OwnerID, active, goal)
}

func (r *PostgresRepository) FindGoalByID(ctx context.Context, goalID uuid.UUID) (*domain.Goal, error) {
	var goal domain.Goal
	if err := r.loadAggregate(ctx, "goals", goalID, &goal, ErrGoalNotFound); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *PostgresRepository) ListGoalsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Goal, error) {
	return listAggregates[domain.Goal](ctx, r.db, "goals", ownerID)
}

func (r *PostgresRepository) SaveCampaign(ctx context.Context, campaign *domain.Campaign) error {
	return r.saveAggregate(ctx, "campaigns", campaign.ID, campaign.OwnerID, campaign.Active, campaign)
}

func (r *PostgresRepository) FindCampaignByID(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	var c domain.Campaign
	if err := r.loadAggregate(ctx, "campaigns", campaignID, &c, ErrCampaignNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) ListCampaignsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Campaign, error) {
	return listAggregates[domain.Campaign](ctx, r.db, "campaigns", ownerID)
}

func (r *PostgresRepository) SaveGroup(ctx context.Context, group *domain.Group) error {
	return r.saveAggregate(ctx, "contribution_groups", group.ID, group.OwnerID, group.Status == domain.GroupActive, group)
}

func (r *PostgresRepository) FindGroupByID(ctx context.Context, groupID uuid.UUID) (*domain.Group, error) {
	var g domain.Group
	if err := r.loadAggregate(ctx, "contribution_groups", groupID, &g, ErrGroupNotFound); err != nil {
		return nil, err
	}
	return &g, nil
}

func listAggregates[T any](ctx context.Context, db *pgxpool.Pool, table string, ownerID uuid.UUID) ([]T, error) {
	query := fmt.Sprintf(`SELECT state FROM %s WHERE owner_id = $1 ORDER BY updated_at DESC`, table)
	rows, err := db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SaveBudget(ctx context.Context, budget *domain.Budget) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO budgets (id, owner_id, name, timeframe_days, total_expenses, total_income, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = $3, timeframe_days = $4, total_expenses = $5, total_income = $6`,
		budget.ID, budget.OwnerID, budget.Name, budget.TimeframeDays,
		budget.TotalExpenses, budget.TotalIncome, budget.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindBudgetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Budget, error) {
	var b domain.Budget
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, name, timeframe_days, total_expenses, total_income, created_at
		FROM budgets WHERE owner_id = $1`,
		ownerID).Scan(&b.ID, &b.OwnerID, &b.Name, &b.TimeframeDays, &b.TotalExpenses, &b.TotalIncome, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepository) AddBudgetEntry(ctx context.Context, entry *domain.BudgetEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO budget_entries (id, budget_id, kind, description, category, amount, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.BudgetID, entry.Kind, entry.Description, entry.Category, entry.Amount, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert budget entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListBudgetEntries(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, budget_id, kind, description, category, amount, recorded_at
		FROM budget_entries WHERE budget_id = $1 ORDER BY recorded_at DESC`,
		budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BudgetEntry
	for rows.Next() {
		var e domain.BudgetEntry
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.Kind, &e.Description, &e.Category, &e.Amount, &e.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
