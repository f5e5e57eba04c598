package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/service"
	"github.com/go-chi/jwtauth"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	Users    *service.UserService
	Rounds   *service.RoundService
	Survival *service.SurvivalService
	Duels    *service.DuelService
	Archiver *service.Archiver
	Ledger   *service.LedgerService
}

func NewHandler(users *service.UserService, rounds *service.RoundService,
	survival *service.SurvivalService, duels *service.DuelService,
	archiver *service.Archiver, ledger *service.LedgerService) *Handler {
	return &Handler{
		Users:    users,
		Rounds:   rounds,
		Survival: survival,
		Duels:    duels,
		Archiver: archiver,
		Ledger:   ledger,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) ok(w http.ResponseWriter, message string, data interface{}) {
	h.CreateResponse(w, Response{Message: message, Code: http.StatusOK, Data: data})
}

// fail maps the typed core errors onto HTTP statuses; anything unmapped is
// a systemic fault.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientFunds):
		code = http.StatusPaymentRequired
	case errors.Is(err, errs.ErrRoundAlreadyOpen),
		errors.Is(err, errs.ErrDuplicateBet),
		errors.Is(err, errs.ErrSeasonExists),
		errors.Is(err, errs.ErrAlreadyJoined),
		errors.Is(err, errs.ErrPickAlreadyExists):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrNotOpponent):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrRoundNotOpen),
		errors.Is(err, errs.ErrDeadlinePassed),
		errors.Is(err, errs.ErrBetsLocked),
		errors.Is(err, errs.ErrResultsIncomplete),
		errors.Is(err, errs.ErrSeasonNotOpen),
		errors.Is(err, errs.ErrSeasonNotDecided),
		errors.Is(err, errs.ErrPlayerNotAlive),
		errors.Is(err, errs.ErrNotJoined),
		errors.Is(err, errs.ErrTeamAlreadyUsed),
		errors.Is(err, errs.ErrTeamNotPickable),
		errors.Is(err, errs.ErrDuelNotPending),
		errors.Is(err, errs.ErrOpponentIneligible),
		errors.Is(err, errs.ErrSelfChallenge):
		code = http.StatusBadRequest
	}
	h.CreateResponse(w, Response{Message: err.Error(), Code: code, Error: err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
		return false
	}
	return true
}

// userID pulls the subject claim set by the identity provider.
func (h *Handler) userID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func (h *Handler) isAdmin(r *http.Request) bool {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return false
	}
	role, _ := claims["role"].(string)
	return role == "ADMIN"
}

// AdminOnly rejects callers without the ADMIN role claim.
func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAdmin(r) {
			h.CreateResponse(w, Response{Message: "admin role required", Code: http.StatusForbidden})
			return
		}
		next.ServeHTTP(w, r)
	})
}
