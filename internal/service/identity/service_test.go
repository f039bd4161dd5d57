package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/pkg/auth"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/security"
)

type fakeUsers struct {
	byEmail map[string]*model.User
}

func (f *fakeUsers) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, apperrors.NewNotFound("user", nil)
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return u, nil
}

func newLoginEnv(t *testing.T) (Service, auth.TokenService, *model.User) {
	t.Helper()

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        "doc@example.com",
		Name:         "Dr. Who",
		PasswordHash: hash,
		Role:         model.RoleDoctor,
	}

	tokens := auth.NewTokenService("test-secret", time.Hour)
	svc := NewService(&fakeUsers{byEmail: map[string]*model.User{user.Email: user}}, tokens, hasher)
	return svc, tokens, user
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, tokens, user := newLoginEnv(t)

	resp, err := svc.Login(context.Background(), user.Email, "s3cret-pass")

	require.NoError(t, err)
	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	svc, _, user := newLoginEnv(t)

	_, err := svc.Login(context.Background(), user.Email, "wrong")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	svc, _, _ := newLoginEnv(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestCallerRoundTrip(t *testing.T) {
	caller := Caller{ID: uuid.New(), Name: "Nina", Role: model.RoleNurse}
	ctx := WithCaller(context.Background(), caller)

	got, ok := CallerFrom(ctx)

	require.True(t, ok)
	assert.Equal(t, caller, got)
}

func TestCallerAbsent(t *testing.T) {
	_, ok := CallerFrom(context.Background())
	assert.False(t, ok)
}
