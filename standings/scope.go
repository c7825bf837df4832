package standings

import (
	"fmt"

	"github.com/swayamn72/aegis-sub001/models"
)

// OverallLabel is the export label of a scope without a phase or group name.
const OverallLabel = "Overall Standings"

type groupKind uint8

const (
	groupOverall groupKind = iota
	groupNamed
)

// GroupScope selects either the whole phase or one genuine group of it.
// The zero value is Overall.
type GroupScope struct {
	kind groupKind
	name string
}

func Overall() GroupScope {
	return GroupScope{kind: groupOverall}
}

func Named(name string) GroupScope {
	return GroupScope{kind: groupNamed, name: name}
}

// ParseGroupScope maps a query value onto a scope: empty or the reserved group name mean Overall.
func ParseGroupScope(raw string) GroupScope {
	if raw == "" || raw == models.OverallGroupName {
		return Overall()
	}
	return Named(raw)
}

func (g GroupScope) IsOverall() bool { return g.kind == groupOverall }

// Name returns the group name, empty for Overall.
func (g GroupScope) Name() string {
	if g.kind == groupOverall {
		return ""
	}
	return g.name
}

func (g GroupScope) String() string {
	if g.IsOverall() {
		return models.OverallGroupName
	}
	return fmt.Sprintf("group:%q", g.name)
}

// Scope - что именно считаем: турнир целиком, фазу или группу фазы.
type Scope struct {
	Phase string
	Group GroupScope
}

func TournamentWide() Scope {
	return Scope{}
}

func PhaseScope(phase string, group GroupScope) Scope {
	return Scope{Phase: phase, Group: group}
}

func (s Scope) IsTournamentWide() bool {
	return s.Phase == ""
}

// Label is the human-facing title used by exports.
func (s Scope) Label() string {
	switch {
	case s.IsTournamentWide():
		return OverallLabel
	case s.Group.IsOverall():
		return s.Phase
	default:
		return fmt.Sprintf("%s - %s", s.Phase, s.Group.Name())
	}
}

func (s Scope) String() string {
	if s.IsTournamentWide() {
		return "tournament"
	}
	return fmt.Sprintf("phase:%q/%s", s.Phase, s.Group)
}
