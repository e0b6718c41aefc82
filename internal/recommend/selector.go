package recommend

import (
	"fmt"
	"strings"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/personas"
	"spendlens/internal/signals"

	"github.com/google/uuid"
)

// Default output caps per generation run.
const (
	DefaultMaxEducation = 5
	DefaultMaxOffers    = 3
)

// ConsistencyError reports an internal contradiction in the selection
// inputs, such as a matched persona with no triggered signals. It is fatal
// for the run: the caller aborts instead of emitting recommendations built
// on inconsistent state.
type ConsistencyError struct {
	UserID uuid.UUID
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent selection state for user %s: %s", e.UserID, e.Reason)
}

// personaSignals maps each persona to the signals it prioritizes, in
// preference order. Signals outside the primary and secondary personas still
// run, after these.
var personaSignals = map[string][]SignalID{
	personas.PersonaHighUtilization:   {SignalHighUtilization, SignalInterestCharges, SignalMinimumPaymentOnly, SignalOverdue},
	personas.PersonaVariableIncome:    {SignalVariableIncome},
	personas.PersonaSubscriptionHeavy: {SignalSubscriptionHeavy},
	personas.PersonaSavingsBuilder:    {SignalSavingsBuilder},
	personas.PersonaDebtBurden:        {SignalMortgageDebt, SignalMortgagePayment, SignalStudentDebt, SignalStudentPayment},
}

// Config bounds one generation run.
type Config struct {
	MaxEducation int
	MaxOffers    int
}

func DefaultConfig() Config {
	return Config{MaxEducation: DefaultMaxEducation, MaxOffers: DefaultMaxOffers}
}

// Input is everything one selection run reads. ApprovedTemplateIDs and
// ApprovedOfferContents carry the user's still-approved recommendations so a
// regeneration never duplicates them.
type Input struct {
	User         models.User
	Accounts     []models.Account
	Liabilities  []models.Liability
	Transactions []models.Transaction
	Signals      signals.SignalSet
	Assignment   personas.Assignment
	Contexts     []SignalContext

	ApprovedTemplateIDs   map[string]bool
	ApprovedOfferContents map[string]bool

	Now time.Time
}

// Candidate is one selected recommendation together with its audit trace.
type Candidate struct {
	Recommendation models.Recommendation
	Trace          Trace
}

// Selector turns triggered signals into a capped, diverse, persona-ordered
// set of recommendations. Stateless and safe for concurrent use.
type Selector struct {
	cfg Config
}

func NewSelector(cfg Config) *Selector {
	if cfg.MaxEducation <= 0 {
		cfg.MaxEducation = DefaultMaxEducation
	}
	if cfg.MaxOffers <= 0 {
		cfg.MaxOffers = DefaultMaxOffers
	}
	return &Selector{cfg: cfg}
}

// Select produces up to MaxEducation education items and MaxOffers offers.
// Signals belonging to the primary persona are consumed first, then the
// secondary persona's, then the rest in canonical order. One education item
// per content category and one offer per product type.
func (s *Selector) Select(in Input) ([]Candidate, error) {
	if in.Assignment.HasPersona() && len(in.Contexts) == 0 {
		return nil, &ConsistencyError{
			UserID: in.User.ID,
			Reason: fmt.Sprintf("persona %s assigned but no signals triggered", in.Assignment.PersonaID),
		}
	}

	ordered := orderContexts(in.Contexts, in.Assignment)
	var out []Candidate
	out = append(out, s.selectEducation(in, ordered)...)
	out = append(out, s.selectOffers(in, ordered)...)
	return out, nil
}

// orderContexts sorts triggered contexts so the primary persona's signals
// come first, then the secondary's, preserving canonical order within each
// group.
func orderContexts(contexts []SignalContext, assignment personas.Assignment) []SignalContext {
	rank := map[SignalID]int{}
	next := 0
	assign := func(personaID string) {
		for _, id := range personaSignals[personaID] {
			if _, seen := rank[id]; !seen {
				rank[id] = next
				next++
			}
		}
	}
	if assignment.HasPersona() {
		assign(assignment.PersonaID)
	}
	if len(assignment.Matches) > 1 {
		assign(assignment.Matches[1].PersonaID)
	}

	unranked := len(rank) + len(contexts)
	ordered := make([]SignalContext, len(contexts))
	copy(ordered, contexts)
	pos := func(c SignalContext) int {
		if r, ok := rank[c.ID]; ok {
			return r
		}
		return unranked
	}
	// Stable insertion keeps canonical order among equally ranked signals.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && pos(ordered[j]) < pos(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func (s *Selector) selectEducation(in Input, ordered []SignalContext) []Candidate {
	var out []Candidate
	seenCategories := map[string]bool{}

	for _, ctx := range ordered {
		if len(out) >= s.cfg.MaxEducation {
			break
		}
		// A signal's whole catalog is considered before moving on; the
		// category de-dup and the cap bound how much of it lands.
		for _, tpl := range TemplatesForSignal(ctx.ID) {
			if len(out) >= s.cfg.MaxEducation {
				break
			}
			if seenCategories[tpl.Category] || in.ApprovedTemplateIDs[tpl.ID] {
				continue
			}
			title, content, err := RenderTemplate(tpl, ctx.Data.Variables())
			if err != nil {
				// A context missing a variable for one template can still
				// satisfy the next.
				continue
			}
			seenCategories[tpl.Category] = true
			out = append(out, s.candidate(in, ctx, tpl.ID, "", nil,
				models.RecommendationEducation, title, content, Rationale(ctx)))
		}
	}
	return out
}

func (s *Selector) selectOffers(in Input, ordered []SignalContext) []Candidate {
	var out []Candidate
	seenTypes := map[string]bool{}

	for _, ctx := range ordered {
		if len(out) >= s.cfg.MaxOffers {
			break
		}
		for _, offer := range OffersForSignal(ctx.ID) {
			if len(out) >= s.cfg.MaxOffers {
				break
			}
			if seenTypes[offer.ProductType] {
				continue
			}
			if in.ApprovedOfferContents[NormalizeContent(offer.Content)] {
				continue
			}
			eligibility := CheckEligibility(offer, in.User, in.Signals, in.Accounts)
			if !eligibility.Eligible {
				continue
			}
			seenTypes[offer.ProductType] = true
			out = append(out, s.candidate(in, ctx, "", offer.ID, &eligibility,
				models.RecommendationOffer, offer.Title, offer.Content, OfferRationale(offer, ctx)))
		}
	}
	return out
}

func (s *Selector) candidate(
	in Input,
	ctx SignalContext,
	templateID, offerID string,
	eligibility *EligibilityResult,
	recType models.RecommendationType,
	title, content, rationale string,
) Candidate {
	content = WithDisclosure(content, recType == models.RecommendationOffer)

	status := models.StatusPending
	if len(ToneViolations(title)) > 0 || len(ToneViolations(content)) > 0 {
		status = models.StatusFlagged
	}

	rec := models.Recommendation{
		ID:         uuid.New(),
		UserID:     in.User.ID,
		Type:       recType,
		Title:      title,
		Content:    content,
		Rationale:  rationale,
		Persona:    in.Assignment.PersonaID,
		SignalID:   string(ctx.ID),
		TemplateID: templateID,
		OfferID:    offerID,
		Status:     status,
		CreatedAt:  in.Now,
		UpdatedAt:  in.Now,
	}
	trace := BuildTrace(rec.ID, in.Assignment, ctx, templateID, offerID, eligibility,
		in.Accounts, in.Liabilities, in.Transactions, in.Now)
	return Candidate{Recommendation: rec, Trace: trace}
}

// NormalizeContent canonicalizes offer text for duplicate comparison:
// lowercased with whitespace runs collapsed.
func NormalizeContent(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}
