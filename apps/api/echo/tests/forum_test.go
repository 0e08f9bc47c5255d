package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core/forum"
	"github.com/ilmhub/ilm/core/user"
)

func Test_forumApi(t *testing.T) {
	e := setup(t)

	asker := e.createUser(t, "Asker", "asker", user.RoleMember)
	member := e.createUser(t, "Member", "member", user.RoleMember)
	scholar := e.createUser(t, "Shaykh", "shaykh", user.RoleScholar)
	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	askerToken, memberToken, scholarToken := e.token(t, asker), e.token(t, member), e.token(t, scholar)

	nq := forum.NewQuestion{Title: "Combining prayers while travelling", Body: "Is it allowed to combine Dhuhr and Asr?", Category: "Fiqh"}
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/v1/forum/questions", "", nq).Code)

	rec := e.do(t, http.MethodPost, "/v1/forum/questions", askerToken, forum.NewQuestion{Title: " ", Body: "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fieldErrors(t, rec), "title")

	rec = e.do(t, http.MethodPost, "/v1/forum/questions", askerToken, nq)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q forum.Question
	decode(t, rec, &q)
	assert.Equal(t, forum.StatusOpen, q.Status)
	assert.Equal(t, "fiqh", q.Category)
	qPath := "/v1/forum/questions/" + q.ID

	var first, second forum.Answer
	t.Run("only scholars answer", func(t *testing.T) {
		na := forum.NewAnswer{Body: "Yes, the traveller may combine them."}
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, qPath+"/answers", memberToken, na).Code)

		rec := e.do(t, http.MethodPost, qPath+"/answers", scholarToken, na)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &first)

		rec = e.do(t, http.MethodPost, qPath+"/answers", e.token(t, admin), forum.NewAnswer{Body: "See Sahih Muslim 705."})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &second)

		decode(t, e.get(t, qPath, ""), &q)
		assert.Equal(t, forum.StatusAnswered, q.Status)
		assert.Equal(t, 2, q.AnswersCount)
		assert.Len(t, q.Answers, 2)
	})

	t.Run("only the asker accepts", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, qPath+"/answers/"+second.ID+"/accept", memberToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, qPath+"/answers/nope/accept", askerToken, nil).Code)

		rec := e.do(t, http.MethodPost, qPath+"/answers/"+second.ID+"/accept", askerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		decode(t, e.get(t, qPath, ""), &q)
		require.Len(t, q.Answers, 2)
		assert.Equal(t, second.ID, q.Answers[0].ID, "accepted answer comes first")
		assert.True(t, q.Answers[0].IsAccepted)
		assert.False(t, q.Answers[1].IsAccepted)
	})

	t.Run("list filters", func(t *testing.T) {
		var qs []forum.Question
		decode(t, e.get(t, "/v1/forum/questions?search=dhuhr&status=ANSWERED", ""), &qs)
		require.Len(t, qs, 1)
		decode(t, e.get(t, "/v1/forum/questions?author="+member.ID, ""), &qs)
		assert.Empty(t, qs)
	})

	t.Run("closed questions take no answers", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, qPath+"/close", memberToken, nil).Code)

		rec := e.do(t, http.MethodPost, qPath+"/close", askerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &q)
		assert.Equal(t, forum.StatusClosed, q.Status)

		assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, qPath+"/close", askerToken, nil).Code)
		assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, qPath+"/answers", scholarToken, forum.NewAnswer{Body: "late"}).Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, qPath, askerToken, nil).Code)
		assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, qPath, e.token(t, admin), nil).Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, qPath, "").Code)
	})
}
