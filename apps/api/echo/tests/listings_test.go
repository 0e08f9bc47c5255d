package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core/event"
	"github.com/ilmhub/ilm/core/group"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/user"
)

func Test_eventApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	member := e.createUser(t, "Member", "member", user.RoleMember)
	adminToken := e.token(t, admin)

	starts := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	ne := map[string]interface{}{
		"title":       "Weekly Tafsir Circle",
		"category":    event.CategoryEducational,
		"starts_at":   starts,
		"ends_at":     starts.Add(2 * time.Hour),
		"location":    "Masjid an-Nur",
		"description": "Surat al-Kahf",
	}

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/v1/events", "", ne).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/v1/events", e.token(t, member), ne).Code)

	rec := e.do(t, http.MethodPost, "/v1/events", adminToken, map[string]interface{}{"title": "x", "category": "sports", "starts_at": starts})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fieldErrors(t, rec), "category")

	rec = e.do(t, http.MethodPost, "/v1/events", adminToken, ne)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ev event.Event
	decode(t, rec, &ev)
	assert.NotEmpty(t, ev.HijriDate, "hijri date is derived from starts_at")
	assert.Equal(t, admin.ID, ev.CreatedBy)

	t.Run("public list and detail", func(t *testing.T) {
		var events []event.Event
		decode(t, e.get(t, "/v1/events?search=tafsir&category=EDUCATIONAL", ""), &events)
		require.Len(t, events, 1)
		assert.Equal(t, ev.ID, events[0].ID)

		decode(t, e.get(t, "/v1/events?to="+time.Now().UTC().Format("2006-01-02"), ""), &events)
		assert.Empty(t, events)

		assert.Equal(t, http.StatusOK, e.get(t, "/v1/events/"+ev.ID, "").Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, "/v1/events/nope", "").Code)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := e.get(t, "/v1/events?from=tomorrow", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid date", fieldErrors(t, rec)["from"])
	})

	t.Run("upcoming merges occasions", func(t *testing.T) {
		var items []event.UpcomingItem
		decode(t, e.get(t, "/v1/events/upcoming?limit=5", ""), &items)
		require.Len(t, items, 5)

		var kinds = map[string]int{}
		for i, it := range items {
			kinds[it.Kind]++
			if i > 0 {
				assert.False(t, it.Gregorian.Before(items[i-1].Gregorian), "chronological order")
			}
		}
		assert.Equal(t, 1, kinds["event"])
		assert.Equal(t, 4, kinds["occasion"])
	})

	t.Run("update and delete", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/v1/events/"+ev.ID, adminToken, map[string]interface{}{"location": "Online"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &ev)
		assert.Equal(t, "Online", ev.Location)

		assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/v1/events/"+ev.ID, adminToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, e.get(t, "/v1/events/"+ev.ID, "").Code)
	})
}

func Test_jobApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	adminToken := e.token(t, admin)

	nj := job.NewJob{
		Title:        "Quran Teacher",
		Organization: "Dar al-Huda",
		Description:  "Teach tajweed to children",
		Location:     "Amman",
		JobType:      job.TypePartTime,
		Requirements: []string{"Ijazah in Hafs"},
	}
	rec := e.do(t, http.MethodPost, "/v1/jobs", adminToken, nj)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var active job.Job
	decode(t, rec, &active)
	assert.True(t, active.IsActive)

	nj.Title = "Imam"
	rec = e.do(t, http.MethodPost, "/v1/jobs", adminToken, nj)
	require.Equal(t, http.StatusCreated, rec.Code)
	var closed job.Job
	decode(t, rec, &closed)
	rec = e.do(t, http.MethodPut, "/v1/jobs/"+closed.ID, adminToken, map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var jobs []job.Job
	decode(t, e.get(t, "/v1/jobs", ""), &jobs)
	require.Len(t, jobs, 1, "anonymous users only see active jobs")
	assert.Equal(t, active.ID, jobs[0].ID)

	decode(t, e.get(t, "/v1/jobs?is_active=false", ""), &jobs)
	assert.Len(t, jobs, 1, "is_active is ignored for non admins")

	decode(t, e.get(t, "/v1/jobs?is_active=false", adminToken), &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, closed.ID, jobs[0].ID)

	assert.Equal(t, http.StatusNotFound, e.get(t, "/v1/jobs/"+closed.ID, "").Code)
	assert.Equal(t, http.StatusOK, e.get(t, "/v1/jobs/"+closed.ID, adminToken).Code)

	rec = e.do(t, http.MethodPost, "/v1/jobs", adminToken, job.NewJob{Title: "x", Organization: "y", Description: "z", JobType: "gig"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fieldErrors(t, rec), "job_type")
}

func Test_groupApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	adminToken := e.token(t, admin)

	ng := group.NewGroup{
		Name:        "Halaqat al-Fiqh",
		Category:    "Fiqh",
		InviteLink:  "https://chat.whatsapp.com/AbCdEf123456",
		City:        "Cairo",
		MemberCount: 120,
	}
	rec := e.do(t, http.MethodPost, "/v1/groups", adminToken, ng)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var g group.Group
	decode(t, rec, &g)
	assert.Equal(t, "fiqh", g.Category)
	assert.Equal(t, "ar", g.Language)

	t.Run("invite link is unique", func(t *testing.T) {
		ng.Name = "Copy"
		rec := e.do(t, http.MethodPost, "/v1/groups", adminToken, ng)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, fieldErrors(t, rec), "invite_link")
	})

	t.Run("invite link must be whatsapp", func(t *testing.T) {
		ng.InviteLink = "https://example.com/join"
		rec := e.do(t, http.MethodPost, "/v1/groups", adminToken, ng)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "must be a https://chat.whatsapp.com/ invite link", fieldErrors(t, rec)["invite_link"])
	})

	t.Run("public list", func(t *testing.T) {
		var groups []group.Group
		decode(t, e.get(t, "/v1/groups?search=cairo", ""), &groups)
		require.Len(t, groups, 1)
		assert.Equal(t, g.ID, groups[0].ID)
	})
}
