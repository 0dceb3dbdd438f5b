package auth

import (
	"net/http"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/httputil"

	"github.com/go-chi/chi/v5"
)

type credentialsBody struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

type registerBody struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
	Code      string `json:"code"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	Major    string `json:"major,omitempty"`
}

type userResponse struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Major     string `json:"major"`
	Role      string `json:"role"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func userResponseFrom(user db.User) userResponse {
	return userResponse{
		StudentID: user.Studentid,
		Name:      user.Name,
		Major:     user.Major,
		Role:      user.Role,
	}
}

// Routes exposes the auth service as a JSON api.
func (s Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/verify", func(w http.ResponseWriter, req *http.Request) {
		body, err := httputil.ReadJSON[credentialsBody](req)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
			return
		}

		result, err := s.Verify(req.Context(), body.StudentID, body.Password)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, verifyResponse{
			Verified: result.Verified,
			Code:     result.Code,
			Name:     result.Name,
			Major:    result.Major,
		})
	})

	r.Post("/register", func(w http.ResponseWriter, req *http.Request) {
		body, err := httputil.ReadJSON[registerBody](req)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
			return
		}

		user, err := s.Register(req.Context(), RegisterParams{
			StudentID: body.StudentID,
			Password:  body.Password,
			Code:      body.Code,
		})
		switch err {
		case nil:
		case ErrInvalidVerification:
			httputil.WriteError(req.Context(), w, http.StatusUnauthorized, err)
			return
		case ErrAlreadyRegistered:
			httputil.WriteError(req.Context(), w, http.StatusConflict, err)
			return
		default:
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, userResponseFrom(user))
	})

	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		body, err := httputil.ReadJSON[credentialsBody](req)
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusBadRequest, err)
			return
		}

		token, user, err := s.Login(req.Context(), body.StudentID, body.Password)
		if err == ErrInvalidCredentials {
			httputil.WriteError(req.Context(), w, http.StatusUnauthorized, err)
			return
		}
		if err != nil {
			httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, loginResponse{
			Token: token,
			User:  userResponseFrom(user),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireAuth(s))

		r.Get("/me", func(w http.ResponseWriter, req *http.Request) {
			user := httputil.ProfileFromContext(req.Context())
			httputil.WriteJSON(w, http.StatusOK, userResponseFrom(user))
		})

		r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
			token := httputil.TokenFromContext(req.Context())
			err := s.Logout(req.Context(), token)
			if err != nil {
				httputil.WriteError(req.Context(), w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}
