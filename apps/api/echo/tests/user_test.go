package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/ilmhub/ilm/apps/api/echo"
	"github.com/ilmhub/ilm/core/user"
	"github.com/ilmhub/ilm/tests"
)

func Test_userApi_login(t *testing.T) {
	e := setup(t)

	pwd := "Kr1tik@l-Pa55"
	testutil.CreateUser(t, e.usrRepo, "Ahmad", "ahmad", "ahmad@test.ilm", pwd, nil, true)
	testutil.CreateUser(t, e.usrRepo, "Inactive", "inactive", "inactive@test.ilm", pwd, nil, false)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{name: "missing credentials", body: echoapi.LoginRequest{}, wantCode: http.StatusBadRequest},
		{name: "unknown user", body: echoapi.LoginRequest{Username: "nobody", Password: pwd}, wantCode: http.StatusBadRequest, wantErr: "authentication failed"},
		{name: "wrong password", body: echoapi.LoginRequest{Username: "ahmad", Password: "nope"}, wantCode: http.StatusBadRequest, wantErr: "authentication failed"},
		{name: "inactive user", body: echoapi.LoginRequest{Username: "inactive", Password: pwd}, wantCode: http.StatusForbidden, wantErr: "account deactivated"},
		{name: "by username", body: echoapi.LoginRequest{Username: "AHMAD ", Password: pwd}, wantCode: http.StatusOK},
		{name: "by email", body: echoapi.LoginRequest{Username: "ahmad@test.ilm", Password: pwd}, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/v1/users/login", "", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			switch {
			case tt.wantErr != "":
				assert.Equal(t, tt.wantErr, errorOf(t, rec))
			case tt.wantCode == http.StatusOK:
				var resp echoapi.LoginResponse
				decode(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}

	usr, err := e.usrRepo.GetUser(context.Background(), user.GetFilter{Username: "ahmad"})
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero(), "last login is recorded")
}

func Test_userApi_tokenRefresh(t *testing.T) {
	e := setup(t)

	member := e.createUser(t, "Member", "member", user.RoleMember)
	naughty := testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog", "ndog@test.ilm", "", nil, false)

	rec := e.do(t, http.MethodPost, "/v1/users/token-refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errMissingToken.Error, errorOf(t, rec))

	rec = e.do(t, http.MethodPost, "/v1/users/token-refresh", e.token(t, naughty), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account deactivated", errorOf(t, rec))

	rec = e.do(t, http.MethodPost, "/v1/users/token-refresh", e.token(t, member), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.LoginResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
}

func Test_userApi_query(t *testing.T) {
	e := setup(t)

	now := time.Now()
	author := testutil.CreateUser(t, e.usrRepo, "Author", "author", "author@test.ilm", "", []string{user.RoleAuthor}, true, now.Add(-2*time.Hour))
	scholar := testutil.CreateUser(t, e.usrRepo, "Scholar", "scholar", "scholar@test.ilm", "", []string{user.RoleScholar}, true, now.Add(-time.Hour))
	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin", "admin@test.ilm", "", []string{user.RoleAdmin}, true, now)
	inactive := testutil.CreateUser(t, e.usrRepo, "Gone", "gone", "gone@test.ilm", "", nil, false, now.Add(time.Hour))

	adminToken := e.token(t, admin)
	path := func(v url.Values) string { return "/v1/users?" + v.Encode() }
	ids := func(users []user.User) []string {
		res := make([]string, 0, len(users))
		for _, u := range users {
			res = append(res, u.ID)
		}
		return res
	}

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		want     []user.User
	}{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized},
		{name: "admin required", path: "/v1/users", token: e.token(t, author), wantCode: http.StatusForbidden},
		{name: "all, newest first", path: "/v1/users", token: adminToken, want: []user.User{inactive, admin, scholar, author}},
		{name: "search", path: path(url.Values{"search": {"SCHOL"}}), token: adminToken, want: []user.User{scholar}},
		{name: "role", path: path(url.Values{"role": {user.RoleAuthor, user.RoleScholar}}), token: adminToken, want: []user.User{scholar, author}},
		{name: "is_active=false", path: path(url.Values{"is_active": {"false"}}), token: adminToken, want: []user.User{inactive}},
		{
			name: "created_from", path: path(url.Values{"created_from": {now.Add(-90 * time.Minute).Format(time.RFC3339)}}),
			token: adminToken, want: []user.User{inactive, admin, scholar},
		},
		{name: "ordering", path: path(url.Values{"ordering": {"name"}}), token: adminToken, want: []user.User{admin, author, inactive, scholar}},
		{name: "paging", path: path(url.Values{"ordering": {"name"}, "limit": {"2"}, "offset": {"1"}}), token: adminToken, want: []user.User{author, inactive}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.get(t, tt.path, tt.token)
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var got []user.User
			decode(t, rec, &got)
			assert.Equal(t, ids(tt.want), ids(got))
		})
	}
}

func Test_userApi_create(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	adminToken := e.token(t, admin)

	newUser := func(uname string, roles ...string) user.NewUser {
		return user.NewUser{
			Name:            "New " + uname,
			Username:        uname,
			Email:           uname + "@test.ilm",
			Password:        "Sup3r-S3cret!x",
			PasswordConfirm: "Sup3r-S3cret!x",
			Roles:           roles,
		}
	}

	rec := e.do(t, http.MethodPost, "/v1/users", adminToken, newUser("scholar1", user.RoleScholar))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created user.User
	decode(t, rec, &created)
	assert.Equal(t, "scholar1", created.Username)
	assert.True(t, created.IsScholar())

	t.Run("duplicate username", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/v1/users", adminToken, newUser("scholar1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("cannot grant a higher role", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/v1/users", adminToken, newUser("owner1", user.RoleAdminOwner))
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Equal(t, "not enough rights to set these roles", fieldErrors(t, rec)["roles"])
	})

	t.Run("password mismatch", func(t *testing.T) {
		nu := newUser("mismatch")
		nu.PasswordConfirm = "something else"
		rec := e.do(t, http.MethodPost, "/v1/users", adminToken, nu)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, fieldErrors(t, rec), "password_confirm")
	})
}

func Test_userApi_detail(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	member := e.createUser(t, "Member", "member", user.RoleMember)
	other := e.createUser(t, "Other", "other", user.RoleMember)

	t.Run("self", func(t *testing.T) {
		rec := e.get(t, "/v1/users/"+member.ID, e.token(t, member))
		require.Equal(t, http.StatusOK, rec.Code)
		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, member.ID, got.ID)
	})

	t.Run("other user is hidden", func(t *testing.T) {
		rec := e.get(t, "/v1/users/"+other.ID, e.token(t, member))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("admin sees everyone", func(t *testing.T) {
		rec := e.get(t, "/v1/users/"+other.ID, e.token(t, admin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member cannot change own roles", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/v1/users/"+member.ID, e.token(t, member), map[string]interface{}{"roles": []string{user.RoleAdmin}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("member updates bio", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/v1/users/"+member.ID, e.token(t, member), map[string]interface{}{"bio": "طالب علم"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, "طالب علم", got.Bio)
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/v1/users/"+admin.ID, e.token(t, admin), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = e.do(t, http.MethodDelete, "/v1/users?id="+admin.ID+"&id="+other.ID, e.token(t, admin), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/v1/users/"+other.ID, e.token(t, admin), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = e.get(t, "/v1/users/"+other.ID, e.token(t, admin))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("roles", func(t *testing.T) {
		rec := e.get(t, "/v1/users/roles", e.token(t, member))
		require.Equal(t, http.StatusOK, rec.Code)
		var roles []user.Role
		decode(t, rec, &roles)
		assert.Len(t, roles, len(user.Roles))
	})
}
