/**
 * @description
 * Domain model for crowdfunding campaigns. Contributions are escrowed per
 * contributor; settlement either pays the full pot to the owner (target met)
 * or lets each contributor recover exactly what they put in (target missed).
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is one crowdfunding campaign. The contribution map and the
// whitelist are part of the aggregate: totalContributed always equals the sum
// of nonzero entries and ContributorCount the number of such entries.
type Campaign struct {
	ID               uuid.UUID           `json:"id"`
	OwnerID          uuid.UUID           `json:"owner_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	TargetAmount     int64               `json:"target_amount"`
	Deadline         time.Time           `json:"deadline"`
	CreatedAt        time.Time           `json:"created_at"`
	TotalContributed int64               `json:"total_contributed"`
	ContributorCount int                 `json:"contributor_count"`
	Active           bool                `json:"active"`
	Private          bool                `json:"private"`
	Contributions    map[uuid.UUID]int64 `json:"contributions"`
	Whitelist        map[uuid.UUID]bool  `json:"whitelist"`
}

// TargetMet reports whether the campaign has raised its target.
func (c *Campaign) TargetMet() bool {
	return c.TotalContributed >= c.TargetAmount
}

// CampaignPolicy bounds campaign creation and whitelisting. Values come from
// configuration; the zero value is not usable.
type CampaignPolicy struct {
	MinTargetAmount   int64
	MaxTargetAmount   int64
	MaxDurationDays   int
	WhitelistBatchCap int
}
