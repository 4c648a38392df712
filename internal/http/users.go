package httpserver

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spotshare/spotshare/internal/auth"
	"github.com/spotshare/spotshare/internal/domain"
	"github.com/spotshare/spotshare/internal/repository"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type submitRatingRequest struct {
	PostID  string  `json:"postId"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "A valid email address is required")
		return
	}
	if len(req.Password) < 5 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Password must be at least 5 characters")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Name is required")
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.Printf("hash password failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create account")
		return
	}

	user, err := s.repo.Users.Create(r.Context(), repository.UserCreateParams{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Email address already exists")
			return
		}
		s.logger.Printf("create user failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create account")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User created!",
		"userId":  user.ID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.repo.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
			return
		}
		s.logger.Printf("login lookup failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not log in")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Printf("issue token failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not log in")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"token":  token,
		"userId": user.ID,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.repo.Users.GetByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("get user failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not fetch user")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]domain.User{"user": user})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	user, err := s.repo.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("get status failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not fetch status")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": user.Status})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Status must not be empty")
		return
	}

	user, err := s.repo.Users.UpdateStatus(r.Context(), userID, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("update status failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update status")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Status updated.",
		"status":  user.Status,
	})
}

func (s *Server) handleGetBucket(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	posts, err := s.service.GetBucket(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bucket fetched.",
		"bucket":  posts,
	})
}

func (s *Server) handleAddToBucket(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	post, err := s.service.AddToBucket(r.Context(), userID, chi.URLParam(r, "postId"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Added to bucket.",
		"bucket":  post,
	})
}

func (s *Server) handleRemoveFromBucket(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := s.service.RemoveFromBucket(r.Context(), userID, chi.URLParam(r, "postId")); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Removed from bucket."})
}

func (s *Server) handleGetRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.service.GetUserRatings(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Ratings fetched.",
		"ratings": ratings,
	})
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if chi.URLParam(r, "userId") != userID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Cannot submit ratings for another user")
		return
	}

	var req submitRatingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.PostID) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "postId is required")
		return
	}

	result, err := s.service.ApplyRating(r.Context(), req.PostID, userID, req.Rating, req.Comment)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	status := http.StatusCreated
	message := "Rating recorded."
	if !result.IsNew {
		status = http.StatusOK
		message = "Rating updated."
	}
	s.respondJSON(w, status, map[string]interface{}{
		"message": message,
		"rating":  result.Rating,
		"post":    result.Post,
	})
}
