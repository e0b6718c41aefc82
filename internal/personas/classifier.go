package personas

import (
	"sort"
	"time"

	"spendlens/internal/signals"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoPersonaName is the display name of the sentinel "no match" assignment.
const NoPersonaName = "No Persona"

// Match is one persona rule that matched, before priority resolution.
type Match struct {
	PersonaID   string         `json:"persona_id"`
	PersonaName string         `json:"persona_name"`
	Priority    int            `json:"priority"`
	Reasoning   string         `json:"reasoning"`
	SignalsUsed map[string]any `json:"signals_used"`
}

// Assignment is the classifier's result for one (user, window). PersonaID is
// empty when no rule matched; that is a normal outcome, not an error.
type Assignment struct {
	UserID      uuid.UUID      `json:"user_id"`
	PersonaID   string         `json:"persona_id"`
	PersonaName string         `json:"persona_name"`
	WindowDays  int            `json:"window_days"`
	Reasoning   string         `json:"reasoning"`
	SignalsUsed map[string]any `json:"signals_used"`
	AssignedAt  time.Time      `json:"assigned_at"`
	// Matches lists every rule that matched, ordered by priority. The
	// recommendation selector uses the second entry as the secondary persona.
	Matches []Match `json:"matching_personas"`
}

// HasPersona reports whether a rule matched.
func (a Assignment) HasPersona() bool {
	return a.PersonaID != ""
}

// Classifier evaluates the ordered persona rule table against one window's
// signals. Stateless and safe for concurrent use.
type Classifier struct {
	rules  []Rule
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{rules: Rules, logger: logger}
}

// Classify evaluates every rule and resolves ties by priority (lower wins).
// With no matching rule it returns the sentinel no-persona assignment.
func (c *Classifier) Classify(set signals.SignalSet) Assignment {
	var matches []Match
	for _, rule := range c.rules {
		ok, reasoning, used := rule.Evaluate(set)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			PersonaID:   rule.ID,
			PersonaName: rule.Name,
			Priority:    rule.Priority,
			Reasoning:   reasoning,
			SignalsUsed: used,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Priority < matches[j].Priority })

	assignment := Assignment{
		UserID:      set.UserID,
		PersonaName: NoPersonaName,
		WindowDays:  set.WindowDays,
		Reasoning:   "No persona criteria matched",
		AssignedAt:  set.CalculatedAt,
		Matches:     matches,
	}
	if len(matches) > 0 {
		top := matches[0]
		assignment.PersonaID = top.PersonaID
		assignment.PersonaName = top.PersonaName
		assignment.Reasoning = top.Reasoning
		assignment.SignalsUsed = top.SignalsUsed
		if len(matches) > 1 {
			assignment.Reasoning += " (also matched: " + joinNames(matches[1:]) + ")"
		}
	}

	c.logger.Debug("persona classified",
		zap.String("user_id", set.UserID.String()),
		zap.Int("window_days", set.WindowDays),
		zap.String("persona_id", assignment.PersonaID),
		zap.Int("matches", len(matches)),
	)
	return assignment
}

// Primary picks the canonical persona for a user: the 30-day assignment,
// falling back to the 180-day one only when the 30-day window matched
// nothing.
func Primary(short, long Assignment) Assignment {
	if short.HasPersona() {
		return short
	}
	return long
}

func joinNames(matches []Match) string {
	out := ""
	for i, m := range matches {
		if i > 0 {
			out += ", "
		}
		out += m.PersonaName
	}
	return out
}
