package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/okidwi/storefront/internal/config"
	"github.com/okidwi/storefront/internal/constants"
	inErrors "github.com/okidwi/storefront/internal/errors"
	"github.com/okidwi/storefront/internal/log"
	"github.com/okidwi/storefront/internal/otel"
	"github.com/okidwi/storefront/internal/repository"
	"github.com/okidwi/storefront/user/pkg/request"
	"github.com/okidwi/storefront/user/pkg/response"
)

const uniqueViolationCode = "23505"

type UserService struct {
	queries *repository.Queries
	cfg     *config.Config
}

func NewUserService(queries *repository.Queries, cfg *config.Config) UserService {
	return UserService{queries: queries, cfg: cfg}
}

func (s UserService) Register(
	c context.Context,
	param request.Register,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user to database").Logger()
	logger.Info().Msg("inserting user to database")
	user, err := s.queries.InsertUser(c, repository.InsertUserParams{
		ID:       uuid.New(),
		Username: param.Username,
		Email:    strings.ToLower(param.Email),
		Password: string(hashed),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			err = errors.Join(err, inErrors.ErrEmailTaken)
		}
		err = fmt.Errorf("failed inserting user to database with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("inserted user to database")

	return user.Response(), nil
}

func (s UserService) Login(c context.Context, param request.Login) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user by email").Logger()
	logger.Info().Msg("finding user by email")
	user, err := s.queries.FindUserByEmail(c, strings.ToLower(param.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrPasswordMismatch)
		}
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "comparing password").Logger()
	logger.Info().Msg("comparing password")
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password))
	if err != nil {
		err = errors.Join(err, inErrors.ErrPasswordMismatch)
		err = fmt.Errorf("failed comparing password with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("compared password")

	logger = logger.With().Str(log.KeyProcess, "creating access token").Logger()
	logger.Info().Msg("creating access token")
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user.ID.String(),
		Issuer:    constants.AppStorefront,
		Audience:  jwt.ClaimStrings{constants.AudienceUser},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.Application.SecretKey))
	if err != nil {
		err = fmt.Errorf("failed creating access token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("created access token")

	return response.Login{Token: token}, nil
}

func (s UserService) FindById(c context.Context, userId uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService FindById").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user by id").Logger()
	logger.Info().Msg("finding user by id")
	user, err := s.queries.FindUserById(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrUserNotFound)
		}
		err = fmt.Errorf("failed finding userId=%s with error=%w", userId.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("found user by id")

	return user.Response(), nil
}
