package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/ilmhub/ilm/apps/api/echo"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/user"
	"github.com/ilmhub/ilm/services/email"
	"github.com/ilmhub/ilm/tests"
)

func Test_contentApi_workflow(t *testing.T) {
	e := setup(t)

	author := e.createUser(t, "Author", "author", user.RoleAuthor)
	editor := e.createUser(t, "Editor", "editor", user.RoleEditor)
	member := e.createUser(t, "Member", "member", user.RoleMember)
	authorToken, editorToken, memberToken := e.token(t, author), e.token(t, editor), e.token(t, member)

	newItem := content.NewItem{
		Title:       "  فضل العلم  ",
		Summary:     "On the virtue of knowledge",
		Body:        "طلب العلم فريضة على كل مسلم",
		ContentType: content.TypeArticle,
		Category:    "Fiqh",
		Tags:        []string{"Ilm", "adab"},
	}

	rec := e.do(t, http.MethodPost, "/v1/content", memberToken, newItem)
	assert.Equal(t, http.StatusForbidden, rec.Code, "members cannot write")

	rec = e.do(t, http.MethodPost, "/v1/content", authorToken, newItem)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var it content.Item
	decode(t, rec, &it)
	assert.Equal(t, "فضل العلم", it.Title)
	assert.Equal(t, "fiqh", it.Category)
	assert.Equal(t, []string{"ilm", "adab"}, it.Tags)
	assert.Equal(t, "ar", it.Language)
	assert.Equal(t, content.StatusDraft, it.Status)
	itemPath := "/v1/content/" + it.ID

	t.Run("drafts are hidden", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, e.get(t, itemPath, "").Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, itemPath, memberToken).Code)
		assert.Equal(t, http.StatusOK, e.get(t, itemPath, authorToken).Code)
		assert.Equal(t, http.StatusOK, e.get(t, itemPath, editorToken).Code)

		var items []content.Item
		decode(t, e.get(t, "/v1/content", ""), &items)
		assert.Empty(t, items)
		decode(t, e.get(t, "/v1/content", authorToken), &items)
		assert.Len(t, items, 1)
	})

	t.Run("author edits draft", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, itemPath, authorToken, map[string]interface{}{"summary": "Updated"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &it)
		assert.Equal(t, "Updated", it.Summary)
	})

	t.Run("unknown action", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, itemPath+"/publish", authorToken, nil).Code)
	})

	t.Run("approve before submit is a conflict", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, itemPath+"/approve", editorToken, nil).Code)
	})

	t.Run("submit notifies editors", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, itemPath+"/submit", authorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &it)
		assert.Equal(t, content.StatusPendingReview, it.Status)

		sent := emailsvc.GetSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, editor.Email, sent[0].To[0].Address)
		assert.Equal(t, "Content awaiting review", sent[0].Subject)
	})

	t.Run("pending items cannot be edited", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, itemPath, authorToken, map[string]interface{}{"summary": "again"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("author cannot approve", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, itemPath+"/approve", authorToken, nil).Code)
	})

	t.Run("reject requires notes", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, itemPath+"/reject", editorToken, echoapi.TransitionRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, fieldErrors(t, rec), "notes")
	})

	t.Run("reject then revise", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		rec := e.do(t, http.MethodPost, itemPath+"/reject", editorToken, echoapi.TransitionRequest{Notes: "Add sources"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &it)
		assert.Equal(t, content.StatusRejected, it.Status)
		assert.Equal(t, "Add sources", it.ReviewNotes)
		assert.Equal(t, editor.ID, it.ReviewerID.String)

		sent := emailsvc.GetSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, author.Email, sent[0].To[0].Address)
		assert.Equal(t, "Your submission was rejected", sent[0].Subject)

		rec = e.do(t, http.MethodPost, itemPath+"/revise", authorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = e.do(t, http.MethodPost, itemPath+"/submit", authorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("approve publishes", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, itemPath+"/approve", editorToken, echoapi.TransitionRequest{Notes: "جزاك الله خيرا"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &it)
		assert.Equal(t, content.StatusPublished, it.Status)
		assert.True(t, it.PublishedAt.Valid)

		var items []content.Item
		decode(t, e.get(t, "/v1/content?tag=ilm", ""), &items)
		require.Len(t, items, 1)
		assert.Equal(t, it.ID, items[0].ID)
	})

	t.Run("views are counted and recorded", func(t *testing.T) {
		e.get(t, itemPath, "")
		rec := e.get(t, itemPath, memberToken)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &it)
		assert.GreaterOrEqual(t, it.ViewsCount, 2)

		var acts []activity.Activity
		decode(t, e.get(t, "/v1/activities/me?type=view", memberToken), &acts)
		require.Len(t, acts, 1)
		assert.Equal(t, it.ID, acts[0].TargetID)
	})

	t.Run("bookmark toggles", func(t *testing.T) {
		var resp echoapi.BookmarkResponse
		decode(t, e.do(t, http.MethodPost, itemPath+"/bookmark", memberToken, nil), &resp)
		assert.True(t, resp.Bookmarked)

		var acts []activity.Activity
		decode(t, e.get(t, "/v1/activities/me/bookmarks", memberToken), &acts)
		require.Len(t, acts, 1)
		assert.Equal(t, activity.TargetContent, acts[0].TargetType)

		decode(t, e.do(t, http.MethodPost, itemPath+"/bookmark", memberToken, nil), &resp)
		assert.False(t, resp.Bookmarked)
		decode(t, e.get(t, "/v1/activities/me/bookmarks", memberToken), &acts)
		assert.Empty(t, acts)
	})

	t.Run("archive and delete", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, itemPath+"/archive", editorToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, itemPath, "").Code)

		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, itemPath, editorToken, nil).Code)
		admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
		assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, itemPath, e.token(t, admin), nil).Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, itemPath, editorToken).Code)
	})
}

func Test_contentApi_query(t *testing.T) {
	e := setup(t)

	author := e.createUser(t, "Author", "author", user.RoleAuthor)
	other := e.createUser(t, "Other", "other", user.RoleAuthor)
	editor := e.createUser(t, "Editor", "editor", user.RoleEditor)

	pub := testutil.CreateItem(t, e.contentRepo, "Tafsir al-Fatiha", "tafsir", []string{"quran"}, author, content.StatusPublished)
	draft := testutil.CreateItem(t, e.contentRepo, "Draft notes", "tafsir", nil, author, content.StatusDraft)
	othersDraft := testutil.CreateItem(t, e.contentRepo, "Other draft", "fiqh", nil, other, content.StatusDraft)

	ids := func(items []content.Item) []string {
		res := make([]string, 0, len(items))
		for _, it := range items {
			res = append(res, it.ID)
		}
		return res
	}
	list := func(path, token string) []string {
		rec := e.get(t, path, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var items []content.Item
		decode(t, rec, &items)
		return ids(items)
	}

	assert.Equal(t, []string{pub.ID}, list("/v1/content", ""))
	assert.ElementsMatch(t, []string{pub.ID, draft.ID}, list("/v1/content", e.token(t, author)))
	assert.ElementsMatch(t, []string{pub.ID, draft.ID, othersDraft.ID}, list("/v1/content", e.token(t, editor)))
	assert.Equal(t, []string{othersDraft.ID}, list("/v1/content?status=draft&category=FIQH", e.token(t, editor)))
	assert.Equal(t, []string{pub.ID}, list("/v1/content?search=fatiha", ""))
	assert.Empty(t, list("/v1/content?content_type=video", ""))
}
