package attendance

import (
	"net/http"
	"strconv"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/httputil"

	"github.com/go-chi/chi/v5"
)

type createSessionBody struct {
	Description string `json:"description"`
}

type joinBody struct {
	Code string `json:"code"`
}

// Routes exposes attendance check-in. the parent router wires
// RequireAuth; joining additionally requires an accepted member.
func (s Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(db.RoleMember, db.RoleAdmin))

		r.Get("/sessions/active", func(w http.ResponseWriter, req *http.Request) {
			sessions, err := s.ListActiveSessions(req.Context())
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, sessions)
		})

		r.Post("/join", func(w http.ResponseWriter, req *http.Request) {
			user := httputil.ProfileFromContext(req.Context())
			body, err := httputil.ReadJSON[joinBody](req)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			}

			session, err := s.Join(req.Context(), user.Studentid, body.Code)
			switch err {
			case nil:
			case ErrNoSuchSession:
				httputil.WriteError(req.Context(), w, http.StatusNotFound, err)
				return
			case ErrSessionClosed:
				httputil.WriteError(req.Context(), w, http.StatusGone, err)
				return
			case ErrAlreadyJoined:
				httputil.WriteError(req.Context(), w, http.StatusConflict, err)
				return
			default:
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, session)
		})

		r.Get("/me", func(w http.ResponseWriter, req *http.Request) {
			user := httputil.ProfileFromContext(req.Context())
			history, err := s.History(req.Context(), user.Studentid)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, history)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(db.RoleAdmin))

		r.Get("/sessions", func(w http.ResponseWriter, req *http.Request) {
			sessions, err := s.ListSessions(req.Context())
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, sessions)
		})

		r.Post("/sessions", func(w http.ResponseWriter, req *http.Request) {
			body, err := httputil.ReadJSON[createSessionBody](req)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			}

			session, err := s.CreateSession(req.Context(), body.Description)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, session)
		})

		r.Post("/sessions/{id}/close", func(w http.ResponseWriter, req *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			}

			err = s.CloseSession(req.Context(), id)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}
