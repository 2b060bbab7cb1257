// internal/game/roles.go
package game

// RoleKind separates roles that only change behavior from roles that attract a color.
type RoleKind int

const (
	Functional RoleKind = iota
	ColorPreference
)

// Role is a special player role. Color and Chance are only set for ColorPreference roles:
// a drawn card of Color is intercepted with probability 1/Chance.
type Role struct {
	Kind   RoleKind
	Name   string
	Color  Color
	Chance int
}

// HiddenRoleName replaces other players' roles when roles are secret.
const HiddenRoleName = "???"

var (
	Blaster   = Role{Kind: Functional, Name: "Sprengmeister"}
	Headfool  = Role{Kind: Functional, Name: "Obernarr"}
	Servant   = Role{Kind: Functional, Name: "Diener"}
	Gleeful   = Role{Kind: Functional, Name: "Schadenfroh"}
	Pessimist = Role{Kind: Functional, Name: "Pessimist"}
	Optimist  = Role{Kind: Functional, Name: "Optimist"}
	Gambler   = Role{Kind: Functional, Name: "Zocker"}
	Thief     = Role{Kind: Functional, Name: "Dieb"}
	Greedy    = Role{Kind: Functional, Name: "Gierig"}

	Wizardmaster = Role{Kind: ColorPreference, Name: "Zaubermeister", Color: Magician, Chance: 3}
	RedSheep     = Role{Kind: ColorPreference, Name: "Rotes Schaf", Color: Red, Chance: 4}
	YellowSheep  = Role{Kind: ColorPreference, Name: "Gelbes Schaf", Color: Yellow, Chance: 4}
	GreenSheep   = Role{Kind: ColorPreference, Name: "Grünes Schaf", Color: Green, Chance: 4}
	BlueSheep    = Role{Kind: ColorPreference, Name: "Blaues Schaf", Color: Blue, Chance: 4}
)

// AllRoles is the registry in display order.
var AllRoles = []Role{
	Blaster, Headfool, Servant, Gleeful, Pessimist, Optimist, Gambler, Thief, Greedy,
	Wizardmaster, RedSheep, YellowSheep, GreenSheep, BlueSheep,
}

// RoleByName looks a role up by its display name.
func RoleByName(name string) (Role, bool) {
	for _, r := range AllRoles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// availableRoles returns the roles that make sense for the rule set. The Blaster only
// intercepts the Bomb, so it is left out when special cards are off.
func availableRoles(rules RuleSet) []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if r == Blaster && !rules.Enabled(RuleSpecialCards) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// intercepts reports whether the role competes for the drawn card, and with which chance.
func (r Role) intercepts(c Card) (int, bool) {
	if r == Blaster {
		return 1, c == Bomb
	}
	if r.Kind == ColorPreference && r.Color == c.Color {
		return r.Chance, true
	}
	return 0, false
}
