package book

import (
	"errors"
	"net/http"

	"bookcatalog/internal/httpx"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const reviewsAddedMessage = "reviews added successfully"

type HTTPHandler struct {
	service *Service
	log     *zap.Logger
}

func NewHTTPHandler(service *Service, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

type reviewReq struct {
	Reviews any `json:"reviews"`
}

// List handles GET /books
// @Summary List or search books
// @Description Returns every book, or those whose title, author, genre or publication date contain searchTerm (case-insensitive)
// @Tags books
// @Produce json
// @Param searchTerm query string false "Substring to search for"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context(), r.URL.Query().Get("searchTerm"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, books)
}

// Get handles GET /books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// Create handles POST /books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Param request body Details true "Book details"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req Details
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONDecodeError(w, err)
		return
	}

	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, res)
}

// Replace handles PUT /books/{id}
// @Summary Edit a book
// @Description Overwrites image, title, author, genre and publicationDate. Reviews are kept.
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body Details true "Book details"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req Details
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONDecodeError(w, err)
		return
	}

	res, err := h.service.Replace(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Debug("book replaced", zap.String("id", id), zap.Bool("modified", res.Modified))
	httpx.JSONSuccess(w, id)
}

// Delete handles DELETE /books/{id}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, id)
}

// AddReview handles POST /reviews/{id}
// @Summary Add a review to a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body reviewReq true "Review"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /reviews/{id} [post]
func (h *HTTPHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONDecodeError(w, err)
		return
	}

	if err := h.service.AddReview(r.Context(), chi.URLParam(r, "id"), req.Reviews); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, httpx.MessageResponse{Message: reviewsAddedMessage})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, ErrInvalidID):
		httpx.JSONError(w, http.StatusBadRequest, "Invalid book id")
	default:
		h.log.Error("book request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", httpx.RequestIDFrom(r)),
		)
		httpx.JSONInternalError(w)
	}
}
