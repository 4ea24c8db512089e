/**
 * @description
 * This file contains the application service for the ledger. The `Service`
 * struct orchestrates the deterministic accounting core: it supplies the
 * current time from an injected clock, enforces per-entity mutual exclusion,
 * loads and saves aggregates through the repository, and forwards the domain
 * events each operation emits to the message broker.
 *
 * The core computes payout amounts; the service reports them to the caller,
 * who is responsible for actually moving value.
 *
 * @dependencies
 * - internal/domain, internal/ledger, internal/store: Core logic and data access.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/ledger"
	"github.com/blockbudget/ledger-service/internal/store"
	"github.com/blockbudget/ledger-service/pkg/rabbitmq"
)

// Clock supplies the current time for every operation. The core never reads
// the wall clock itself, which keeps operations deterministic and testable.
type Clock func() time.Time

// Service provides the core business logic for the ledger.
type Service struct {
	repo           store.Repository
	producer       rabbitmq.Publisher
	locks          *entityLocks
	clock          Clock
	campaignPolicy domain.CampaignPolicy
}

// NewService creates a new ledger service instance.
func NewService(repo store.Repository, producer rabbitmq.Publisher, policy domain.CampaignPolicy, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:           repo,
		producer:       producer,
		locks:          newEntityLocks(),
		clock:          clock,
		campaignPolicy: policy,
	}
}

// publish forwards domain events to the broker. Publish failures are logged
// and swallowed: the state change has already committed and event delivery is
// best-effort, matching the downstream notification contract.
func (s *Service) publish(ctx context.Context, events []domain.Event) {
	for _, event := range events {
		if err := s.producer.PublishLedgerEvent(ctx, event); err != nil {
			log.Printf("level=warn component=ledger_service msg=\"event publish failed\" type=%s entity=%s err=%v",
				event.Type, event.EntityID, err)
		}
	}
}

// RegisterUser creates a user record. Usernames are unique case-insensitively.
func (s *Service) RegisterUser(ctx context.Context, username, displayName string) (*domain.User, error) {
	user := &domain.User{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   s.clock(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}

// OpenAccount opens the caller's savings account. The lock is taken on the
// owner id so that two concurrent opens cannot both pass the single-active-
// account check.
func (s *Service) OpenAccount(ctx context.Context, ownerID uuid.UUID, accountType domain.AccountType, interestType domain.InterestType, lockDuration time.Duration, initialDeposit int64) (*domain.InterestAccount, error) {
	release, err := s.locks.acquire(ownerID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.repo.FindActiveAccountByOwner(ctx, ownerID); err == nil {
		return nil, domain.ErrAccountExists
	} else if err != store.ErrAccountNotFound {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	acct, events, err := ledger.OpenAccount(ledger.OpenAccountParams{
		OwnerID:        ownerID,
		Type:           accountType,
		InterestType:   interestType,
		LockDuration:   lockDuration,
		InitialDeposit: initialDeposit,
	}, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	s.publish(ctx, events)
	return acct, nil
}

// GetAccount returns the caller's active savings account.
func (s *Service) GetAccount(ctx context.Context, ownerID uuid.UUID) (*domain.InterestAccount, error) {
	acct, err := s.repo.FindActiveAccountByOwner(ctx, ownerID)
	if err == store.ErrAccountNotFound {
		return nil, domain.ErrAccountNotActive
	}
	return acct, err
}

// withAccount runs fn against the caller's active account under its entity
// lock and persists the result when fn succeeds.
func (s *Service) withAccount(ctx context.Context, ownerID uuid.UUID, fn func(*domain.InterestAccount, time.Time) ([]domain.Event, error)) (*domain.InterestAccount, error) {
	acct, err := s.GetAccount(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.acquire(acct.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload under the lock: another operation may have saved in between.
	acct, err = s.repo.FindAccountByID(ctx, acct.ID)
	if err != nil {
		return nil, err
	}

	events, err := fn(acct, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	s.publish(ctx, events)
	return acct, nil
}

// Deposit adds funds to the caller's account.
func (s *Service) Deposit(ctx context.Context, ownerID uuid.UUID, amount int64) (*domain.InterestAccount, error) {
	return s.withAccount(ctx, ownerID, func(acct *domain.InterestAccount, now time.Time) ([]domain.Event, error) {
		return ledger.Deposit(acct, amount, now)
	})
}

// AccrueInterest applies interest for the time elapsed since the last
// accrual and returns the interest amount credited.
func (s *Service) AccrueInterest(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var credited int64
	_, err := s.withAccount(ctx, ownerID, func(acct *domain.InterestAccount, now time.Time) ([]domain.Event, error) {
		interest, events, err := ledger.AccrueInterest(acct, now)
		credited = interest
		return events, err
	})
	return credited, err
}

// WithdrawFromAccount withdraws funds, reporting the net payout and any
// early-withdrawal penalty.
func (s *Service) WithdrawFromAccount(ctx context.Context, ownerID uuid.UUID, amount int64) (*domain.AccountWithdrawal, error) {
	var result *domain.AccountWithdrawal
	_, err := s.withAccount(ctx, ownerID, func(acct *domain.InterestAccount, now time.Time) ([]domain.Event, error) {
		res, events, err := ledger.Withdraw(acct, amount, now)
		result = res
		return events, err
	})
	return result, err
}
