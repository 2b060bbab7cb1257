// internal/game/rules.go
package game

import (
	"errors"
	"fmt"
)

// RuleKey identifies one configurable option of a room.
type RuleKey string

const (
	RulePoints       RuleKey = "Punkte"
	RuleMagician     RuleKey = "Zauberer"
	RulePrediction   RuleKey = "Ansage"
	RuleTrump        RuleKey = "Trumpf"
	RuleSpecialCards RuleKey = "Spezialkarten"
	RuleMemeCards    RuleKey = "Memekarten"
	RuleSpecialRoles RuleKey = "Spezialrollen"
)

// Option values that the engine branches on.
const (
	OptionNormal = "Normal"

	PointsMax30 = "Max. 30"

	MagicianMiddle = "Mittlerer Zauberer"
	MagicianLast   = "Letzter Zauberer"

	PredictionSequential = "Nacheinander"
	PredictionBlind      = "Blind"

	TrumpOnlyColors = "Nur Farben"

	Disabled = "Deaktiviert"
	Enabled  = "Aktiviert"

	RolesFreeChoice = "Freie Auswahl"
	RolesAssigned   = "Vorgegeben"
	RolesSecret     = "Geheim"
)

// RuleKeys lists every rule in display order.
var RuleKeys = []RuleKey{
	RulePoints, RuleMagician, RulePrediction, RuleTrump,
	RuleSpecialCards, RuleMemeCards, RuleSpecialRoles,
}

// ruleOptions holds the allowed values per rule; the first entry is the default.
var ruleOptions = map[RuleKey][]string{
	RulePoints:       {OptionNormal, PointsMax30},
	RuleMagician:     {OptionNormal, MagicianMiddle, MagicianLast},
	RulePrediction:   {PredictionSequential, PredictionBlind},
	RuleTrump:        {OptionNormal, TrumpOnlyColors},
	RuleSpecialCards: {Disabled, Enabled},
	RuleMemeCards:    {Disabled, Enabled},
	RuleSpecialRoles: {Disabled, RolesFreeChoice, RolesAssigned, RolesSecret},
}

var (
	ErrUnknownRule   = errors.New("unknown rule")
	ErrInvalidOption = errors.New("invalid rule option")
)

// Options returns the allowed values of a rule.
func (k RuleKey) Options() []string {
	return ruleOptions[k]
}

// RuleSet maps every rule to its current value.
type RuleSet map[RuleKey]string

// DefaultRules returns a rule set with every rule at its first option.
func DefaultRules() RuleSet {
	rules := make(RuleSet, len(RuleKeys))
	for _, k := range RuleKeys {
		rules[k] = ruleOptions[k][0]
	}
	return rules
}

// Get returns the value of a rule, falling back to its default when unset.
func (r RuleSet) Get(k RuleKey) string {
	if v, ok := r[k]; ok {
		return v
	}
	if opts := ruleOptions[k]; len(opts) > 0 {
		return opts[0]
	}
	return ""
}

// Is reports whether rule k is set to value.
func (r RuleSet) Is(k RuleKey, value string) bool {
	return r.Get(k) == value
}

// Enabled is shorthand for the on/off card rules.
func (r RuleSet) Enabled(k RuleKey) bool {
	return r.Is(k, Enabled)
}

// Update validates and applies a single rule change.
func (r RuleSet) Update(k RuleKey, value string) error {
	opts, ok := ruleOptions[k]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRule, k)
	}
	for _, o := range opts {
		if o == value {
			r[k] = value
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s", ErrInvalidOption, value, k)
}

// Clone returns an independent copy, used to freeze the rules when a game starts.
func (r RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
