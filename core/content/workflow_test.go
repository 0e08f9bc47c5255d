package content

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from    string
		action  Action
		want    string
		wantErr bool
	}{
		{from: StatusDraft, action: ActionSubmit, want: StatusPendingReview},
		{from: StatusPendingReview, action: ActionApprove, want: StatusPublished},
		{from: StatusPendingReview, action: ActionReject, want: StatusRejected},
		{from: StatusRejected, action: ActionRevise, want: StatusDraft},
		{from: StatusPublished, action: ActionArchive, want: StatusArchived},
		{from: StatusArchived, action: ActionRestore, want: StatusPublished},
		{from: StatusDraft, action: ActionApprove, wantErr: true},
		{from: StatusPublished, action: ActionSubmit, wantErr: true},
		{from: StatusRejected, action: ActionApprove, wantErr: true},
		{from: StatusDraft, action: Action("publish"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.action)+" from "+tt.from, func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.action)
			if tt.wantErr {
				assert.Equal(t, core.ErrInvalidTransition, errors.Cause(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanPerform(t *testing.T) {
	author := user.User{ID: "a", Roles: []string{user.RoleAuthor}}
	other := user.User{ID: "o", Roles: []string{user.RoleAuthor}}
	editor := user.User{ID: "e", Roles: []string{user.RoleEditor}}
	admin := user.User{ID: "x", Roles: []string{user.RoleAdmin}}
	it := Item{AuthorID: author.ID}

	assert.True(t, CanPerform(author, it, ActionSubmit))
	assert.False(t, CanPerform(other, it, ActionSubmit))
	assert.True(t, CanPerform(admin, it, ActionSubmit))
	assert.False(t, CanPerform(editor, it, ActionSubmit), "editors review, they do not submit for others")

	assert.False(t, CanPerform(author, it, ActionApprove))
	assert.True(t, CanPerform(editor, it, ActionApprove))
	assert.True(t, CanPerform(admin, it, ActionArchive))
	assert.False(t, CanPerform(admin, it, Action("publish")))
}

func TestCanSee(t *testing.T) {
	author := user.User{ID: "a", Roles: []string{user.RoleAuthor}}
	member := user.User{ID: "m", Roles: []string{user.RoleMember}}
	editor := user.User{ID: "e", Roles: []string{user.RoleEditor}}

	draft := Item{AuthorID: author.ID, Status: StatusDraft}
	assert.False(t, CanSee(nil, draft))
	assert.False(t, CanSee(&member, draft))
	assert.True(t, CanSee(&author, draft))
	assert.True(t, CanSee(&editor, draft))

	assert.True(t, CanSee(nil, Item{Status: StatusPublished}))
}
