/**
 * @description
 * This file sets up the HTTP router for the ledger service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, panic recovery, timeouts, and JWT
 * authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// LedgerRoutes creates and returns a new router for the ledger service.
func LedgerRoutes(h *LedgerHandlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Registration happens before the caller holds a token.
	r.Post("/users", h.RegisterUserHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Get("/me", h.GetMeHandler)

		// Savings account endpoints. One active account per caller.
		r.Post("/account", h.OpenAccountHandler)
		r.Get("/account", h.GetAccountHandler)
		r.Post("/account/deposits", h.DepositHandler)
		r.Post("/account/accruals", h.AccrueInterestHandler)
		r.Post("/account/withdrawals", h.WithdrawHandler)

		// Goal endpoints
		r.Post("/goals", h.CreateGoalHandler)
		r.Get("/goals", h.ListGoalsHandler)
		r.Get("/goals/{goalID}", h.GetGoalHandler)
		r.Post("/goals/{goalID}/milestones", h.DefineMilestoneHandler)
		r.Post("/goals/{goalID}/milestones/{index}/check", h.CheckMilestoneHandler)
		r.Post("/goals/{goalID}/contributions", h.ContributeToGoalHandler)
		r.Post("/goals/{goalID}/withdrawals", h.WithdrawFromGoalHandler)
		r.Post("/goals/{goalID}/verify-completion", h.VerifyGoalCompletionHandler)
		r.Patch("/goals/{goalID}", h.ModifyGoalHandler)
		r.Post("/goals/{goalID}/emergency", h.EmergencyGoalActionHandler)
		r.Post("/goals/{goalID}/resume", h.ResumeGoalHandler)

		// Campaign endpoints
		r.Post("/campaigns", h.CreateCampaignHandler)
		r.Get("/campaigns", h.ListCampaignsHandler)
		r.Get("/campaigns/{campaignID}", h.GetCampaignHandler)
		r.Post("/campaigns/{campaignID}/whitelist", h.WhitelistAddressesHandler)
		r.Post("/campaigns/{campaignID}/contributions", h.ContributeToCampaignHandler)
		r.Post("/campaigns/{campaignID}/contributions/withdraw", h.WithdrawContributionHandler)
		r.Post("/campaigns/{campaignID}/withdraw-funds", h.WithdrawCampaignFundsHandler)
		r.Post("/campaigns/{campaignID}/end", h.EndCampaignHandler)
		r.Post("/campaigns/{campaignID}/refunds/{contributorID}", h.RefundContributionHandler)

		// Group endpoints
		r.Post("/groups", h.CreateGroupHandler)
		r.Get("/groups/{groupID}", h.GetGroupHandler)
		r.Post("/groups/{groupID}/members", h.JoinGroupHandler)
		r.Delete("/groups/{groupID}/members", h.LeaveGroupHandler)
		r.Post("/groups/{groupID}/contributions", h.GroupContributionHandler)
		r.Post("/groups/{groupID}/late-fees/{memberID}", h.HandleLateFeesHandler)
		r.Post("/groups/{groupID}/distributions", h.DistributeHandler)
		r.Post("/groups/{groupID}/proposals", h.ProposeTransactionHandler)
		r.Post("/groups/{groupID}/proposals/{proposalID}/approvals", h.ApproveTransactionHandler)
		r.Put("/groups/{groupID}/members/{memberID}/role", h.SetMemberRoleHandler)
		r.Post("/groups/{groupID}/dissolve", h.DissolveGroupHandler)

		// Budget endpoints
		r.Post("/budget", h.CreateBudgetHandler)
		r.Get("/budget", h.BudgetSummaryHandler)
		r.Post("/budget/entries", h.RecordBudgetEntryHandler)
		r.Get("/budget/entries", h.ListBudgetEntriesHandler)
	})

	return r
}
