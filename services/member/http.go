package member

import (
	"net/http"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/httputil"

	"github.com/go-chi/chi/v5"
)

type roleBody struct {
	Role string `json:"role"`
}

// Routes exposes the member roster. every route requires a session; the
// caller wires RequireAuth on the parent router.
func (s Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		profiles, err := s.List(req.Context())
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, profiles)
	})

	r.Get("/{studentID}", func(w http.ResponseWriter, req *http.Request) {
		profile, err := s.Get(req.Context(), chi.URLParam(req, "studentID"))
		if err == ErrNoSuchMember {
			httputil.WriteError(req.Context(), w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, profile)
	})

	r.Patch("/me", func(w http.ResponseWriter, req *http.Request) {
		user := httputil.ProfileFromContext(req.Context())
		body, err := httputil.ReadJSON[UpdateProfileParams](req)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
			return
		}

		profile, err := s.UpdateProfile(req.Context(), user.Studentid, body)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, profile)
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(db.RoleAdmin))

		r.Put("/{studentID}/role", func(w http.ResponseWriter, req *http.Request) {
			body, err := httputil.ReadJSON[roleBody](req)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			}

			profile, err := s.SetRole(req.Context(), chi.URLParam(req, "studentID"), body.Role)
			switch err {
			case nil:
			case ErrInvalidRole:
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			case ErrNoSuchMember:
				httputil.WriteError(req.Context(), w, http.StatusNotFound, err)
				return
			default:
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, profile)
		})
	})

	return r
}
