package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rkRashik/deltacrown-registration/internal/catalog"
	"github.com/rkRashik/deltacrown-registration/internal/hub"
	"github.com/rkRashik/deltacrown-registration/internal/registration"
	"github.com/rkRashik/deltacrown-registration/internal/types"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"github.com/rkRashik/deltacrown-registration/internal/ws"
	wire "github.com/rkRashik/deltacrown-registration/pkg/types"
	"go.uber.org/zap"
)

const maxCodeAttempts = 8

// Deps is what the handlers need from the running server.
type Deps struct {
	Hub     *hub.Hub
	Catalog catalog.Catalog
	Flows   wizard.Flows
	Strict  bool
	Log     *zap.Logger
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRequest struct {
	Mode        string              `json:"mode"`
	TeamID      string              `json:"team_id,omitempty"`
	TeamMembers []wizard.TeamMember `json:"team_members,omitempty"`
}

type createResponse struct {
	Code string            `json:"code"`
	View registration.View `json:"view"`
}

// CreateRegistration opens a wizard for the tournament in the URL.
func CreateRegistration(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, wire.CodeBadRequest, "bad json")
			return
		}

		tour, err := d.Catalog.Lookup(r.Context(), slug)
		switch {
		case errors.Is(err, catalog.ErrTournamentNotFound):
			writeError(w, http.StatusNotFound, wire.CodeNotFound, err.Error())
			return
		case err != nil:
			d.Log.Error("catalog lookup failed", zap.String("tournament", slug), zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, wire.CodeUnavailable, "catalog unavailable")
			return
		}

		cfg, err := tour.ConfigFor(req.Mode)
		if err != nil {
			code := wire.CodeModeNotOffered
			if errors.Is(err, wizard.ErrUnknownMode) {
				code = wire.CodeBadRequest
			}
			writeError(w, http.StatusBadRequest, code, err.Error())
			return
		}
		cfg.TeamMembers = req.TeamMembers

		opts := []wizard.Option{wizard.WithLogger(d.Log)}
		if d.Flows != nil {
			opts = append(opts, wizard.WithFlows(d.Flows))
		}
		if d.Strict {
			opts = append(opts, wizard.WithStrictNavigation())
		}
		session, err := wizard.NewSession(cfg, opts...)
		if err != nil {
			d.Log.Error("tournament has an unusable wizard config", zap.String("tournament", slug), zap.Error(err))
			writeError(w, http.StatusUnprocessableEntity, wire.CodeInvalidConfig, err.Error())
			return
		}
		if req.TeamID != "" {
			session.SetField(wizard.FieldTeamID, req.TeamID)
		}

		reg, err := open(r.Context(), d, tour.Slug, session)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, wire.CodeUnavailable, err.Error())
			return
		}
		view, err := reg.State(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, wire.CodeUnavailable, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, createResponse{Code: reg.Code(), View: view})
	}
}

// open registers session under a fresh code, regenerating on collision.
func open(ctx context.Context, d Deps, tournament string, s *wizard.Session) (*registration.Registration, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		reg, err := d.Hub.Create(ctx, code, tournament, s)
		if err != nil {
			return nil, err
		}
		if reg != nil {
			return reg, nil
		}
		d.Log.Debug("collision on code, regenerating", zap.String("code", code))
	}
	return nil, errors.New("could not allocate a registration code")
}

func GetRegistration(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg, ok := lookup(w, r, h)
		if !ok {
			return
		}
		view, err := reg.State(r.Context())
		if err != nil {
			writeError(w, http.StatusGone, wire.CodeUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// PostCommand applies one ClientMessage and answers with the result.
// Commands the wizard refuses are 409 (locked) or 422, with the view.
func PostCommand(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg, ok := lookup(w, r, h)
		if !ok {
			return
		}

		var cm types.ClientMessage
		if err := json.NewDecoder(r.Body).Decode(&cm); err != nil {
			writeError(w, http.StatusBadRequest, wire.CodeBadRequest, "bad json")
			return
		}
		cmd, ok := cm.Command()
		if !ok {
			writeError(w, http.StatusBadRequest, wire.CodeUnknownType, "unknown type "+cm.Type)
			return
		}

		res, err := reg.Do(r.Context(), cmd)
		if err != nil {
			writeError(w, http.StatusGone, wire.CodeUnavailable, err.Error())
			return
		}
		if res.Err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(res.Err, registration.ErrLocked) {
				status = http.StatusConflict
			}
			writeJSON(w, status, struct {
				Error types.ErrorBody `json:"error"`
				View  any             `json:"view"`
			}{types.ErrorBody{Code: ws.ErrorCode(res.Err), Message: res.Err.Error()}, res.View})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func lookup(w http.ResponseWriter, r *http.Request, h *hub.Hub) (*registration.Registration, bool) {
	code := chi.URLParam(r, "code")
	reg, err := h.Get(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, wire.CodeUnavailable, err.Error())
		return nil, false
	}
	if reg == nil {
		writeError(w, http.StatusNotFound, wire.CodeNotFound, "registration not found")
		return nil, false
	}
	return reg, true
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, types.ErrorBody{Code: code, Message: message})
}
