package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"havens-pos-service/internal/config"
	"havens-pos-service/internal/lifecycle"
	"havens-pos-service/internal/middleware"
	"havens-pos-service/internal/services"
	"havens-pos-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *pgxpool.Pool
	Logger   *zap.Logger
	Config   config.Config
	Services *services.Registry
}

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

var errMissingParam = errors.New("missing param")

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func actorFrom(r *http.Request) services.Actor {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		return services.Actor{}
	}
	return services.Actor{UserID: authCtx.UserID, Name: authCtx.Name}
}

// writeDomainError maps lifecycle failures onto the JSON envelope; anything
// else is a 500 with the detail kept out of the response.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMessage string) {
	var lcErr *lifecycle.Error
	if errors.As(err, &lcErr) {
		response.ErrorDetails(w, lcErr.StatusCode, string(lcErr.Code), lcErr.Message, lcErr.Details)
		return
	}
	h.Logger.Error(logMessage, zap.Error(err))
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", logMessage)
}
