package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
)

// decodeAndValidate reads the JSON body into dst and validates it.
// On failure it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	if err := utils.DecodeJSON(r, dst); err != nil {
		logger.Debug("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		logger.Debug("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// uuidParam parses a UUID route parameter, writing a 400 response when it is malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the authenticated principal, writing a 401 response when there is none.
// Routes behind RequireAuthenticated always have one.
func principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p := middleware.GetPrincipalFromContext(r.Context())
	if p == nil {
		_ = utils.WriteUnauthorized(w, "")
		return nil, false
	}
	return p, true
}

// pageQuery parses paging parameters, writing a 400 response when they are malformed
func pageQuery(w http.ResponseWriter, r *http.Request) (repositories.Page, bool) {
	page, err := utils.ParsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return repositories.Page{}, false
	}
	return page, true
}
