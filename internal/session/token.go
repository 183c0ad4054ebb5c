package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
)

// Tokens signs and verifies the session cookie. The subject is the session
// id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) Tokens {
	return Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t Tokens) Issue(c context.Context, sessionID uuid.UUID) (string, time.Time, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Tokens Issue").
		Str(log.KeySessionID, sessionID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating session token").Logger()
	logger.Trace().Msg("creating session token")
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{constants.AudienceSession},
			Issuer:    constants.AppStorefront,
			Subject:   sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	)
	logger.Trace().Msg("created session token")

	logger = logger.With().Str(log.KeyProcess, "signing session token").Logger()
	logger.Trace().Msg("signing session token")
	signed, err := token.SignedString(t.secret)
	if err != nil {
		err = fmt.Errorf("failed signing session token with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return "", time.Time{}, err
	}
	logger.Trace().Msg("signed session token")

	return signed, expiresAt, nil
}

func (t Tokens) Verify(c context.Context, token string) (uuid.UUID, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Tokens Verify").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	claims := &jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		claims,
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithAudience(constants.AudienceSession),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppStorefront),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		logger.Debug().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	if !jwtToken.Valid {
		logger.Debug().Err(commonErrors.ErrTokenInvalid).Msg(commonErrors.ErrTokenInvalid.Error())
		return uuid.Nil, commonErrors.ErrTokenInvalid
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "parsing subject").Logger()
	if claims.Subject == "" {
		return uuid.Nil, commonErrors.ErrEmptySubject
	}
	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", claims.Subject, err)
		logger.Debug().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Str(log.KeySessionID, sessionID.String()).Msg("parsed subject")

	return sessionID, nil
}
