package recommend

import (
	"fmt"

	"spendlens/internal/models"
	"spendlens/internal/signals"
)

// EligibilityCheck is one named gate with its outcome. Every check runs even
// after a failure, so the trace shows the complete picture.
type EligibilityCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// EligibilityResult is the full audit record of an offer's gating.
type EligibilityResult struct {
	OfferID  string             `json:"offer_id"`
	Eligible bool               `json:"eligible"`
	Checks   []EligibilityCheck `json:"checks"`
}

// CheckEligibility runs every gate on an offer for a user. The predatory
// check runs first and unconditionally; the remaining gates come from the
// offer's requirements.
func CheckEligibility(offer Offer, user models.User, set signals.SignalSet, accounts []models.Account) EligibilityResult {
	result := EligibilityResult{OfferID: offer.ID, Eligible: true}
	add := func(name string, passed bool, detail string) {
		result.Checks = append(result.Checks, EligibilityCheck{Name: name, Passed: passed, Detail: detail})
		result.Eligible = result.Eligible && passed
	}

	if predatoryProductTypes[offer.ProductType] {
		add("not_predatory", false, fmt.Sprintf("product type %q is blocklisted", offer.ProductType))
	} else {
		add("not_predatory", true, fmt.Sprintf("product type %q is not blocklisted", offer.ProductType))
	}

	req := offer.Requirements
	if req.MinCreditScore != nil {
		switch {
		case user.CreditScore == nil:
			add("min_credit_score", false, fmt.Sprintf("credit score unknown, offer requires %d", *req.MinCreditScore))
		case *user.CreditScore >= *req.MinCreditScore:
			add("min_credit_score", true, fmt.Sprintf("score %d meets required %d", *user.CreditScore, *req.MinCreditScore))
		default:
			add("min_credit_score", false, fmt.Sprintf("score %d below required %d", *user.CreditScore, *req.MinCreditScore))
		}
	}

	if req.MaxUtilizationPercent != nil {
		util := set.Credit.MaxUtilizationPercent
		add("max_utilization",
			util <= *req.MaxUtilizationPercent,
			fmt.Sprintf("max utilization %.1f%% against allowed %.1f%%", util, *req.MaxUtilizationPercent))
	}

	if req.MinMonthlyIncome != nil {
		income := set.Income.MonthlyIncome
		add("min_monthly_income",
			income >= *req.MinMonthlyIncome,
			fmt.Sprintf("detected monthly income $%.2f against required $%.2f", income, *req.MinMonthlyIncome))
	}

	held := map[models.AccountType]bool{}
	for _, a := range accounts {
		held[a.Type] = true
	}

	if len(req.RequiredAccountTypes) > 0 {
		found := false
		for _, t := range req.RequiredAccountTypes {
			if held[t] {
				found = true
				add("required_account_type", true, fmt.Sprintf("user holds a %s account", t))
				break
			}
		}
		if !found {
			add("required_account_type", false, fmt.Sprintf("user holds none of the required account types %v", req.RequiredAccountTypes))
		}
	}

	if len(req.ExcludeIfHasTypes) > 0 {
		conflict := false
		for _, t := range req.ExcludeIfHasTypes {
			if held[t] {
				conflict = true
				add("no_existing_account", false, fmt.Sprintf("user already holds a %s account", t))
				break
			}
		}
		if !conflict {
			add("no_existing_account", true, fmt.Sprintf("user holds none of the excluded account types %v", req.ExcludeIfHasTypes))
		}
	}

	return result
}
