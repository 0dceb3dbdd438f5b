package application

import (
	"net/http"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/httputil"

	"github.com/go-chi/chi/v5"
)

type applicationResponse struct {
	StudentID   string `json:"studentId"`
	Track       string `json:"track"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	SubmittedAt int64  `json:"submittedAt"`
}

type statusBody struct {
	Status string `json:"status"`
}

func responseFrom(app db.Application) applicationResponse {
	return applicationResponse{
		StudentID:   app.Studentid,
		Track:       app.Track,
		Content:     app.Content,
		Status:      app.Status,
		SubmittedAt: app.Submittedat,
	}
}

// Routes exposes the application workflow. the parent router wires
// RequireAuth.
func (s Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		user := httputil.ProfileFromContext(req.Context())
		body, err := httputil.ReadJSON[SubmitParams](req)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
			return
		}

		app, err := s.Submit(req.Context(), user.Studentid, body)
		if err == ErrAlreadyDecided {
			httputil.WriteError(req.Context(), w, http.StatusConflict, err)
			return
		}
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, responseFrom(app))
	})

	r.Get("/me", func(w http.ResponseWriter, req *http.Request) {
		user := httputil.ProfileFromContext(req.Context())
		app, err := s.Get(req.Context(), user.Studentid)
		if err == ErrNoApplication {
			httputil.WriteError(req.Context(), w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, responseFrom(app))
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(db.RoleAdmin))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			apps, err := s.List(req.Context())
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			out := make([]applicationResponse, len(apps))
			for i, app := range apps {
				out[i] = responseFrom(app)
			}
			httputil.WriteJSON(w, http.StatusOK, out)
		})

		r.Put("/{studentID}/status", func(w http.ResponseWriter, req *http.Request) {
			body, err := httputil.ReadJSON[statusBody](req)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			}

			app, err := s.SetStatus(req.Context(), chi.URLParam(req, "studentID"), body.Status)
			switch err {
			case nil:
			case ErrInvalidStatus:
				httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
				return
			case ErrNoApplication:
				httputil.WriteError(req.Context(), w, http.StatusNotFound, err)
				return
			default:
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, responseFrom(app))
		})
	})

	return r
}
