package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spotshare/spotshare/internal/auth"
	"github.com/spotshare/spotshare/internal/domain"
	"github.com/spotshare/spotshare/internal/feed"
	"github.com/spotshare/spotshare/internal/imagestore"
	"github.com/spotshare/spotshare/internal/repository"
)

const maxUploadBytes = 32 << 20 // 32 MiB

type postListResponse struct {
	Message    string        `json:"message"`
	Posts      []domain.Post `json:"posts"`
	TotalItems int64         `json:"totalItems"`
}

type postResponse struct {
	Message string      `json:"message"`
	Post    domain.Post `json:"post"`
}

type deletePostResponse struct {
	Message         string   `json:"message"`
	AffectedUsers   int      `json:"affectedUsers"`
	StaleUserIDs    []string `json:"staleUserIds,omitempty"`
	CascadeComplete bool     `json:"cascadeComplete"`
}

// parseListFilters builds pagination filters from the query string. Defaults
// are page 1, limit 10; limit is capped at 100.
func parseListFilters(query url.Values) (repository.PostListFilters, error) {
	filters := repository.PostListFilters{Page: 1, Limit: 10}
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 1 {
			return filters, fmt.Errorf("invalid page value %q", val)
		}
		filters.Page = page
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 1 || limit > 100 {
			return filters, fmt.Errorf("invalid limit value %q", val)
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("creator")); val != "" {
		filters.CreatorID = &val
	}
	return filters, nil
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.service.ListPosts(r.Context(), filters)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	posts := result.Items
	if posts == nil {
		posts = []domain.Post{}
	}
	s.respondJSON(w, http.StatusOK, postListResponse{
		Message:    "Fetched posts successfully.",
		Posts:      posts,
		TotalItems: result.TotalItems,
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.service.GetPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, postResponse{Message: "Post fetched.", Post: post})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	input, uploaded, ok := s.decodePostForm(w, r, true)
	if !ok {
		return
	}

	post, err := s.service.CreatePost(r.Context(), userID, input)
	if err != nil {
		// The upload was already stored; do not leave it orphaned.
		if uploaded != "" {
			_ = s.images.Remove(uploaded)
		}
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, postResponse{Message: "Post created successfully!", Post: post})
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	postID := chi.URLParam(r, "postId")

	input, uploaded, ok := s.decodePostForm(w, r, false)
	if !ok {
		return
	}

	post, err := s.service.UpdatePost(r.Context(), userID, postID, input)
	if err != nil {
		if uploaded != "" {
			_ = s.images.Remove(uploaded)
		}
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, postResponse{Message: "Post updated!", Post: post})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	postID := chi.URLParam(r, "postId")

	result, err := s.service.DeletePost(r.Context(), userID, postID)
	if err != nil {
		var partial *feed.PartialCascadeError
		if errors.As(err, &partial) {
			// The post is gone; some users keep stale references until
			// offline reconciliation. Surface both facts.
			s.logger.Printf("partial cascade for post %s, stale users: %v", postID, partial.FailedUserIDs)
			s.respondJSON(w, http.StatusOK, deletePostResponse{
				Message:         "Deleted post.",
				AffectedUsers:   result.AffectedUsers,
				StaleUserIDs:    partial.FailedUserIDs,
				CascadeComplete: false,
			})
			return
		}
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, deletePostResponse{
		Message:         "Deleted post.",
		AffectedUsers:   result.AffectedUsers,
		CascadeComplete: true,
	})
}

// decodePostForm parses the multipart post form shared by create and update.
// It stores an attached image immediately and returns its URL in both the
// input and the second return value so callers can clean up on failure.
func (s *Server) decodePostForm(w http.ResponseWriter, r *http.Request, requireImage bool) (feed.PostInput, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse multipart form")
		return feed.PostInput{}, "", false
	}

	iso := 0
	if val := strings.TrimSpace(r.FormValue("iso")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 0 {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "iso must be a non-negative integer")
			return feed.PostInput{}, "", false
		}
		iso = parsed
	}

	input := feed.PostInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Meta: domain.PhotoMeta{
			TakenDate:    r.FormValue("takenDate"),
			Location:     r.FormValue("location"),
			ISO:          iso,
			ShutterSpeed: r.FormValue("shutterSpeed"),
			Aperture:     r.FormValue("aperture"),
			Camera:       r.FormValue("camera"),
			Lens:         r.FormValue("lens"),
			Equipment:    r.FormValue("equipment"),
			EditSoftware: r.FormValue("editSoftware"),
		},
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if requireImage {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "No image provided.")
			return feed.PostInput{}, "", false
		}
		return input, "", true
	}
	defer file.Close()

	imageURL, err := s.images.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, imagestore.ErrUnsupportedType) {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Image must be png or jpeg")
			return feed.PostInput{}, "", false
		}
		s.logger.Printf("store image failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return feed.PostInput{}, "", false
	}
	input.ImageURL = imageURL
	return input, imageURL, true
}
