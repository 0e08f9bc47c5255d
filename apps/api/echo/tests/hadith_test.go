package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/ilmhub/ilm/apps/api/echo"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/user"
)

func Test_hadithApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	member := e.createUser(t, "Member", "member", user.RoleMember)
	adminToken, memberToken := e.token(t, admin), e.token(t, member)

	niyyah := hadith.NewHadith{
		Collection:  "Bukhari",
		Book:        "Revelation",
		Number:      1,
		ArabicText:  "إِنَّمَا الأَعْمَالُ بِالنِّيَّاتِ",
		Translation: "Actions are by intentions",
		Narrator:    "Umar ibn al-Khattab",
		Grade:       "Sahih",
	}

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/v1/hadiths", memberToken, niyyah).Code)

	rec := e.do(t, http.MethodPost, "/v1/hadiths", adminToken, niyyah)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var h hadith.Hadith
	decode(t, rec, &h)
	assert.Equal(t, hadith.CollectionBukhari, h.Collection)
	assert.Equal(t, hadith.GradeSahih, h.Grade)

	t.Run("duplicate number", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/v1/hadiths", adminToken, niyyah)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, fieldErrors(t, rec), "number")
	})

	t.Run("bad grade", func(t *testing.T) {
		bad := niyyah
		bad.Number, bad.Grade = 2, "strong"
		rec := e.do(t, http.MethodPost, "/v1/hadiths", adminToken, bad)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "grade must be one of sahih, hasan, daif, mawdu", fieldErrors(t, rec)["grade"])
	})

	search := func(v url.Values) []hadith.Hadith {
		rec := e.get(t, "/v1/hadiths?"+v.Encode(), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var hs []hadith.Hadith
		decode(t, rec, &hs)
		return hs
	}

	t.Run("search ignores diacritics", func(t *testing.T) {
		hs := search(url.Values{"q": {"انما الاعمال"}})
		require.Len(t, hs, 1)
		assert.Equal(t, h.ID, hs[0].ID)

		assert.Len(t, search(url.Values{"q": {"INTENTIONS"}}), 1)
		assert.Len(t, search(url.Values{"narrator": {"umar"}, "grade": {"SAHIH"}}), 1)
		assert.Empty(t, search(url.Values{"collection": {hadith.CollectionMuslim}}))
	})

	t.Run("results are cached until a write", func(t *testing.T) {
		q := url.Values{"collection": {hadith.CollectionBukhari}}
		require.Len(t, search(q), 1)

		_, err := e.hadithRepo.CreateHadith(context.Background(), hadith.Hadith{
			Collection: hadith.CollectionBukhari, Number: 50, ArabicText: "الإيمان", Grade: hadith.GradeSahih,
		})
		require.NoError(t, err)
		assert.Len(t, search(q), 1, "served from the cache")

		rec := e.do(t, http.MethodPut, "/v1/hadiths/"+h.ID, adminToken, map[string]interface{}{"chapter": "Bad al-Wahy"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, search(q), 2)
	})

	t.Run("import", func(t *testing.T) {
		batch := []hadith.NewHadith{
			{Collection: "muslim", Number: 8, ArabicText: "بني الإسلام على خمس", Grade: "sahih"},
			{Collection: "bukhari", Number: 1, ArabicText: niyyah.ArabicText, Translation: "Deeds are by intentions", Grade: "sahih"},
		}
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/v1/hadiths/import", memberToken, batch).Code)

		invalid := append([]hadith.NewHadith{{Collection: "unknown", Number: 1, ArabicText: "x", Grade: "sahih"}}, batch...)
		rec := e.do(t, http.MethodPost, "/v1/hadiths/import", adminToken, invalid)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Empty(t, search(url.Values{"collection": {hadith.CollectionMuslim}}), "nothing is written")

		rec = e.do(t, http.MethodPost, "/v1/hadiths/import", adminToken, batch)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Imported int `json:"imported"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, 2, resp.Imported)

		assert.Len(t, search(url.Values{"collection": {hadith.CollectionMuslim}}), 1)
		rec = e.get(t, "/v1/hadiths/"+h.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &h)
		assert.Equal(t, "Deeds are by intentions", h.Translation, "existing numbers are replaced")
	})

	t.Run("bookmark", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/v1/hadiths/"+h.ID+"/bookmark", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/v1/hadiths/nope/bookmark", memberToken, nil).Code)

		var resp echoapi.BookmarkResponse
		decode(t, e.do(t, http.MethodPost, "/v1/hadiths/"+h.ID+"/bookmark", memberToken, nil), &resp)
		assert.True(t, resp.Bookmarked)

		var acts []activity.Activity
		decode(t, e.get(t, "/v1/activities/me/bookmarks?target_type="+activity.TargetHadith, memberToken), &acts)
		require.Len(t, acts, 1)
		assert.Equal(t, h.ID, acts[0].TargetID)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/v1/hadiths/"+h.ID, adminToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, "/v1/hadiths/"+h.ID, "").Code)
		assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/v1/hadiths/"+h.ID, adminToken, nil).Code)
	})
}
