package middleware

import (
	"net/http"
	"strings"

	"github.com/dmoura/orderdraft-backend/api/responses"
	pkgauth "github.com/dmoura/orderdraft-backend/pkg/auth"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

// Auth validates the bearer token and seeds the request context with the
// scope every downstream call is bound to. The raw token rides along so ERP
// calls can forward the caller's credentials.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			scope := types.RequestScope{
				CompanyID: claims.CompanyID,
				BranchID:  claims.BranchID,
				UserID:    claims.UserID,
				SessionID: claims.ID,
				Token:     token,
			}
			if !scope.Valid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing company or branch"))
				return
			}

			ctx := WithScope(r.Context(), scope)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    scope.UserID,
					"company_id": scope.CompanyID,
					"branch_id":  scope.BranchID,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
