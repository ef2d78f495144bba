package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okidwi/storefront/internal/constants"
	inErrors "github.com/okidwi/storefront/internal/errors"
	"github.com/okidwi/storefront/user/pkg/request"
)

func TestRegisterLowercasesEmailAndHidesPassword(t *testing.T) {
	c := context.Background()
	pool, pgContainer, queries, userService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	user, err := userService.Register(c, request.Register{
		Username: "testuser",
		Email:    "TestUser@Example.COM",
		Password: "password",
	})
	require.NoError(t, err)

	assert.Equal(t, "testuser@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)

	stored, err := queries.FindUserByEmail(c, "testuser@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password", stored.Password)
}

func TestRegisterDuplicateEmailReturnsEmailTaken(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, userService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := userService.Register(c, request.Register{
		Username: "testuser",
		Email:    "testuser@example.com",
		Password: "password",
	})
	require.NoError(t, err)

	_, err = userService.Register(c, request.Register{
		Username: "othername",
		Email:    "TESTUSER@example.com",
		Password: "otherpassword",
	})
	assert.ErrorIs(t, err, inErrors.ErrEmailTaken)
}

func TestLoginReturnsVerifiableToken(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, userService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	registered, err := userService.Register(c, request.Register{
		Username: "testuser",
		Email:    "testuser@example.com",
		Password: "password",
	})
	require.NoError(t, err)

	login, err := userService.Login(c, request.Login{
		Email:    "testuser@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	parsed, err := jwt.ParseWithClaims(
		login.Token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) { return []byte("test-secret-key"), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AppStorefront),
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithExpirationRequired(),
	)
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	subject, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, registered.ID.String(), subject)
}

func TestLoginWrongPasswordReturnsMismatch(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, userService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := userService.Register(c, request.Register{
		Username: "testuser",
		Email:    "testuser@example.com",
		Password: "password",
	})
	require.NoError(t, err)

	_, err = userService.Login(c, request.Login{
		Email:    "testuser@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, inErrors.ErrPasswordMismatch)
}

func TestLoginUnknownEmailReturnsMismatch(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, userService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := userService.Login(c, request.Login{
		Email:    "nobody@example.com",
		Password: "password",
	})
	assert.ErrorIs(t, err, inErrors.ErrPasswordMismatch)
}

func TestFindByIdUnknownReturnsUserNotFound(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, userService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := userService.FindById(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrUserNotFound)
}
