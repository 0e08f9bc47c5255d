package content

import (
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

// Action is a step of the authoring workflow.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionRevise  Action = "revise"
	ActionArchive Action = "archive"
	ActionRestore Action = "restore"
)

type transition struct {
	from, to string
	// byEditor actions are reviews. The others belong to the author.
	byEditor bool
}

var transitions = map[Action]transition{
	ActionSubmit:  {from: StatusDraft, to: StatusPendingReview},
	ActionApprove: {from: StatusPendingReview, to: StatusPublished, byEditor: true},
	ActionReject:  {from: StatusPendingReview, to: StatusRejected, byEditor: true},
	ActionRevise:  {from: StatusRejected, to: StatusDraft},
	ActionArchive: {from: StatusPublished, to: StatusArchived, byEditor: true},
	ActionRestore: {from: StatusArchived, to: StatusPublished, byEditor: true},
}

// ParseAction returns the Action named s.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := transitions[a]
	return a, ok
}

// NextStatus returns the status reached by applying action to an item in status `current`.
func NextStatus(current string, action Action) (string, error) {
	tr, ok := transitions[action]
	if !ok || tr.from != current {
		return "", errors.Wrapf(core.ErrInvalidTransition, "%s from %s", action, current)
	}
	return tr.to, nil
}

// CanPerform reports whether usr may apply action to it.
func CanPerform(usr user.User, it Item, action Action) bool {
	tr, ok := transitions[action]
	if !ok {
		return false
	}
	if tr.byEditor {
		return usr.IsEditor()
	}
	return it.AuthorID == usr.ID || usr.IsAdmin()
}

// CanEdit reports whether usr may change the fields of it.
func CanEdit(usr user.User, it Item) bool {
	return it.AuthorID == usr.ID || usr.IsAdmin()
}

// CanSee reports whether the item is visible to viewer (nil for anonymous).
func CanSee(viewer *user.User, it Item) bool {
	if it.Status == StatusPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsEditor() || it.AuthorID == viewer.ID
}
