// Package reconcile turns an install state plus the operator's answer into the
// action the installer should take. It performs no I/O.
package reconcile

import (
	"fmt"

	"github.com/alexisbeaulieu97/gameready/internal/model"
)

// QuestionKind selects the question put to the operator.
type QuestionKind int

const (
	AskInstall QuestionKind = iota
	AskUpdate
	AskReinstall
)

func (k QuestionKind) String() string {
	switch k {
	case AskUpdate:
		return "update"
	case AskReinstall:
		return "reinstall"
	default:
		return "install"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k QuestionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Question is what the operator is asked about one component.
type Question struct {
	Kind QuestionKind  `json:"kind"`
	From model.Version `json:"from,omitempty"`
	To   model.Version `json:"to,omitempty"`
}

// Text renders the prompt for a component display name.
func (q Question) Text(name string) string {
	switch q.Kind {
	case AskUpdate:
		return fmt.Sprintf("Update %s (%s → %s)?", name, q.From, q.To)
	case AskReinstall:
		return fmt.Sprintf("Reinstall %s?", name)
	default:
		return fmt.Sprintf("Install %s?", name)
	}
}

// Recommended is the answer offered by default: yes to installing and updating,
// no to reinstalling an up-to-date component.
func (q Question) Recommended() bool {
	return q.Kind != AskReinstall
}

// ActionKind is the installer's unit of work. The zero value skips.
type ActionKind int

const (
	Skip ActionKind = iota
	Install
	Update
	Reinstall
)

func (k ActionKind) String() string {
	switch k {
	case Install:
		return "install"
	case Update:
		return "update"
	case Reinstall:
		return "reinstall"
	default:
		return "skip"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is the decision for one component. From and To are set only for
// Update.
type Action struct {
	Kind ActionKind    `json:"kind"`
	From model.Version `json:"from,omitempty"`
	To   model.Version `json:"to,omitempty"`
}

// IsSkip reports whether nothing should be done.
func (a Action) IsSkip() bool {
	return a.Kind == Skip
}

// Ask selects the question appropriate for state.
func Ask(state model.InstallState) Question {
	switch {
	case !state.Present:
		return Question{Kind: AskInstall}
	case state.Stale():
		return Question{Kind: AskUpdate, From: state.InstalledVersion, To: state.AvailableVersion}
	default:
		return Question{Kind: AskReinstall}
	}
}

// Decide maps the answer to Ask(state) onto an action. A negative answer
// always skips.
func Decide(state model.InstallState, choice bool) Action {
	if !choice {
		return Action{Kind: Skip}
	}
	q := Ask(state)
	switch q.Kind {
	case AskUpdate:
		return Action{Kind: Update, From: q.From, To: q.To}
	case AskReinstall:
		return Action{Kind: Reinstall}
	default:
		return Action{Kind: Install}
	}
}
