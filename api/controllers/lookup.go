package controllers

import (
	"net/http"

	"github.com/dmoura/orderdraft-backend/api/middleware"
	"github.com/dmoura/orderdraft-backend/api/responses"
	"github.com/dmoura/orderdraft-backend/api/validators"
	"github.com/dmoura/orderdraft-backend/internal/lookup"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
)

// LookupSearch serves debounced search-as-you-type requests. The client
// passes an increasing seq per keystroke and a session key per input field;
// a superseded request comes back with stale=true and empty results, which
// the client drops silently.
func LookupSearch(svc *lookup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq, err := validators.ParseQueryUint64(r, "seq")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.Search(r.Context(), middleware.ScopeFromContext(r.Context()), lookup.Input{
			Type:       enums.LookupType(r.URL.Query().Get("type")),
			Query:      r.URL.Query().Get("q"),
			SessionKey: r.URL.Query().Get("session"),
			Seq:        seq,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// LookupForget drops the sequence tracking of one search field, fired when
// the owning screen closes so a reopened field starts a fresh stream.
func LookupForget(svc *lookup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lookupType := enums.LookupType(r.URL.Query().Get("type"))
		if !lookupType.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid lookup type"))
			return
		}
		session := r.URL.Query().Get("session")
		if session == "" {
			session = middleware.ScopeFromContext(r.Context()).CacheKeyPart()
		}

		svc.Forget(session, lookupType)
		responses.WriteSuccess(w, map[string]string{"status": "forgotten"})
	}
}
