/**
 * @description
 * Domain events emitted by ledger operations. The core returns the events it
 * produced instead of publishing them itself; the service layer forwards them
 * to RabbitMQ (or drops them when no broker is configured). This keeps the
 * accounting core free of any transport concern.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of domain event.
type EventType string

const (
	EventAccountCreated           EventType = "account.created"
	EventDepositReceived          EventType = "account.deposit_received"
	EventInterestPaid             EventType = "account.interest_paid"
	EventWithdrawalProcessed      EventType = "withdrawal.processed"
	EventGoalCreated              EventType = "goal.created"
	EventContributionMade         EventType = "contribution.made"
	EventMilestoneAchieved        EventType = "goal.milestone_achieved"
	EventGoalCompleted            EventType = "goal.completed"
	EventCampaignCreated          EventType = "campaign.created"
	EventAddressWhitelisted       EventType = "campaign.address_whitelisted"
	EventFundsWithdrawn           EventType = "campaign.funds_withdrawn"
	EventContributionRefunded     EventType = "campaign.contribution_refunded"
	EventGroupCreated             EventType = "group.created"
	EventMembershipChanged        EventType = "group.membership_changed"
	EventDistributionProcessed    EventType = "group.distribution_processed"
	EventMultisigProposalCreated  EventType = "group.proposal_created"
	EventMultisigApprovalChanged  EventType = "group.approval_changed"
	EventRulesModified            EventType = "rules.modified"
	EventEmergencyActionTriggered EventType = "emergency.triggered"
)

// Event is one domain event produced by a ledger operation. Amount and
// Penalty are zero when the event carries no monetary payload.
type Event struct {
	Type       EventType `json:"type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Actor      uuid.UUID `json:"actor"`
	Amount     int64     `json:"amount,omitempty"`
	Penalty    int64     `json:"penalty,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
