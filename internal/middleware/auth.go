package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/okidwi/storefront/internal/common"
	inErrors "github.com/okidwi/storefront/internal/errors"
	inHttp "github.com/okidwi/storefront/internal/http"
	"github.com/okidwi/storefront/internal/log"
)

func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
		c := logger.WithContext(r.Context())

		authorization := r.Header.Get("Authorization")
		if authorization == "" || !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			logger.Error().
				Err(inErrors.ErrEmptyAuth).
				Msg(inErrors.ErrEmptyAuth.Error())
			inHttp.WriteErrorResponse(c, w, inErrors.ErrEmptyAuth)
			return
		}

		token := authorization[len("bearer "):]
		jwtToken, err := common.VerifyToken(c, token)
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}

		c = common.AttachJwtTokenToContext(c, jwtToken)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
