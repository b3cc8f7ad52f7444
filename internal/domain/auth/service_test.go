package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
)

type mockCollabRepo struct {
	byUsername map[string]*Collaborator
	logins     []id.ID
}

func (m *mockCollabRepo) GetByUsername(ctx context.Context, username string) (*Collaborator, error) {
	c, ok := m.byUsername[username]
	if !ok {
		return nil, apperror.NewNotFound("collaborator", username)
	}
	return c, nil
}

func (m *mockCollabRepo) GetByID(ctx context.Context, collaboratorID id.ID) (*Collaborator, error) {
	for _, c := range m.byUsername {
		if c.ID == collaboratorID {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("collaborator", collaboratorID)
}

func (m *mockCollabRepo) Create(ctx context.Context, c *Collaborator) error {
	m.byUsername[c.Username] = c
	return nil
}

func (m *mockCollabRepo) RecordLogin(ctx context.Context, collaboratorID id.ID, at time.Time) error {
	m.logins = append(m.logins, collaboratorID)
	return nil
}

func newAuthFixture(t *testing.T) (*Service, *mockCollabRepo, *Collaborator) {
	t.Helper()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	collab := NewCollaborator("maria", "María López", hash, RoleCollaborator)
	repo := &mockCollabRepo{byUsername: map[string]*Collaborator{"maria": collab}}
	svc := NewService(repo, NewJWTService(DefaultJWTConfig("test-secret")))
	return svc, repo, collab
}

func TestLogin_Success(t *testing.T) {
	svc, repo, collab := newAuthFixture(t)

	session, err := svc.Login(context.Background(), Credentials{Username: "maria", Password: "correct-horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.Equal(t, collab.ID, session.Collaborator.ID)
	require.Len(t, repo.logins, 1)
	assert.Equal(t, collab.ID, repo.logins[0])

	// The issued token round-trips through validation.
	actor, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, collab.ID.String(), actor.ID)
	assert.Equal(t, "maria", actor.Username)
	assert.Equal(t, string(RoleCollaborator), actor.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), Credentials{Username: "maria", Password: "wrong"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	assert.Empty(t, repo.logins)
}

func TestLogin_UnknownUserSameError(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, wrongPass := svc.Login(context.Background(), Credentials{Username: "maria", Password: "wrong"})
	_, unknownUser := svc.Login(context.Background(), Credentials{Username: "nobody", Password: "wrong"})

	a, _ := apperror.AsAppError(wrongPass)
	b, _ := apperror.AsAppError(unknownUser)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, _, collab := newAuthFixture(t)
	collab.IsActive = false

	_, err := svc.Login(context.Background(), Credentials{Username: "maria", Password: "correct-horse"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	session, err := svc.Login(context.Background(), Credentials{Username: "maria", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("other-secret")).ValidateToken(session.Token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.TokenTTL = -time.Minute
	jwtSvc := NewJWTService(cfg)

	collab := NewCollaborator("maria", "María López", "x", RoleCollaborator)
	token, _, err := jwtSvc.GenerateToken(collab)
	require.NoError(t, err)

	_, err = jwtSvc.ValidateToken(token)
	assert.Error(t, err)
}
