package service

import (
	"testing"

	"taskpanel/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairIssueAndParse(t *testing.T) {
	setup(t)
	svc := NewAuthService()
	user := mustUser(t, "worker", model.RoleUser)

	access, refresh, err := svc.IssueTokenPair(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	id, err := svc.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.Id, id)

	// A refresh token is not accepted where an access token is expected.
	_, err = svc.ParseAccessToken(refresh)
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	setup(t)
	svc := NewAuthService()
	user := mustUser(t, "worker", model.RoleUser)

	_, refresh, err := svc.IssueTokenPair(user)
	require.NoError(t, err)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)
	id, err := svc.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.Id, id)

	// An access token cannot be used to refresh.
	_, err = svc.Refresh(access)
	assert.Error(t, err)

	_, err = svc.Refresh("not-a-token")
	assert.Error(t, err)
}

func TestRefreshForDeletedUser(t *testing.T) {
	setup(t)
	authSvc := NewAuthService()
	userSvc := UserService{}
	user := mustUser(t, "worker", model.RoleUser)

	_, refresh, err := authSvc.IssueTokenPair(user)
	require.NoError(t, err)

	require.NoError(t, userSvc.DeleteUser(user.Id))
	_, err = authSvc.Refresh(refresh)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService()
	_, err := svc.ParseToken("garbage", "access")
	assert.Error(t, err)

	// Tokens signed with a different secret are rejected.
	other := &AuthService{secret: []byte("other-secret")}
	access, _, err := other.IssueTokenPair(&model.User{Id: 1, Username: "x"})
	require.NoError(t, err)
	_, err = svc.ParseToken(access, "access")
	assert.Error(t, err)
}
