package book

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcatalog/internal/store"
	"bookcatalog/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*MockRepository, *HTTPHandler) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	return mockRepo, NewHTTPHandler(NewService(mockRepo), zap.NewNop())
}

var dune = Book{
	ID:              "652f1a0e8b3c2d1e4f5a6b7c",
	Title:           "Dune",
	Author:          "Frank Herbert",
	Genre:           "SciFi",
	PublicationDate: "1965",
}

func TestHTTPHandler_List(t *testing.T) {
	mockRepo, handler := newTestHandler(t)

	t.Run("all books", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), "").Return([]Book{dune}, nil)

		w := httptest.NewRecorder()
		handler.List(w, testutil.NewRequest(http.MethodGet, "/books", nil))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, true, resp.Body["success"])
		books := resp.DataList()
		if assert.Len(t, books, 1) {
			assert.Equal(t, dune.ID, books[0]["_id"])
			assert.NotContains(t, books[0], "image")
			assert.NotContains(t, books[0], "reviews")
		}
	})

	t.Run("search term forwarded", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), "herb").Return(nil, nil)

		w := httptest.NewRecorder()
		handler.List(w, testutil.NewRequest(http.MethodGet, "/books?searchTerm=herb", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
	})

	t.Run("store fault", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), "").Return(nil, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.List(w, testutil.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"An error occurred"}`, w.Body.String())
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	mockRepo, handler := newTestHandler(t)

	tests := []struct {
		name     string
		book     Book
		err      error
		wantCode int
	}{
		{name: "found", book: dune, wantCode: http.StatusOK},
		{name: "not found", err: ErrNotFound, wantCode: http.StatusNotFound},
		{name: "invalid id", err: ErrInvalidID, wantCode: http.StatusBadRequest},
		{name: "store fault", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.EXPECT().GetByID(gomock.Any(), dune.ID).Return(tt.book, tt.err)

			w := httptest.NewRecorder()
			r := testutil.WithURLParams(testutil.NewRequest(http.MethodGet, "/books/"+dune.ID, nil), "id", dune.ID)
			handler.Get(w, r)

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.err == nil {
				assert.Equal(t, "Dune", resp.DataMap()["title"])
			} else {
				assert.Equal(t, false, resp.Body["success"])
			}
		})
	}

	t.Run("not found message", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "x").Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		handler.Get(w, testutil.WithURLParams(testutil.NewRequest(http.MethodGet, "/books/x", nil), "id", "x"))

		assert.JSONEq(t, `{"success":false,"error":"Book not found"}`, w.Body.String())
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	mockRepo, handler := newTestHandler(t)

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), Book{
			Image:           "https://example.com/dune.jpg",
			Title:           "Dune",
			Author:          "Frank Herbert",
			Genre:           "SciFi",
			PublicationDate: "1965",
		}).Return(store.InsertResult{Acknowledged: true, InsertedID: dune.ID}, nil)

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books", testutil.DuneBody))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"acknowledged":true,"insertedId":"652f1a0e8b3c2d1e4f5a6b7c"}}`, w.Body.String())
	})

	t.Run("partial body accepted", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), Book{Title: "Untitled draft"}).
			Return(store.InsertResult{Acknowledged: true, InsertedID: "id"}, nil)

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books", map[string]any{"title": "Untitled draft"}))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books", `{"title":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid request body"}`, w.Body.String())
	})

	t.Run("store fault", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(store.InsertResult{}, errors.New("boom"))

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/books", testutil.DuneBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Replace(t *testing.T) {
	mockRepo, handler := newTestHandler(t)
	details := Details{Title: "Dune Messiah", Author: "Frank Herbert"}

	tests := []struct {
		name     string
		res      EditResult
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "modified",
			res:      EditResult{Matched: true, Modified: true},
			wantCode: http.StatusOK,
			wantBody: `{"success":true,"data":"652f1a0e8b3c2d1e4f5a6b7c"}`,
		},
		{
			name:     "identical values",
			res:      EditResult{Matched: true},
			wantCode: http.StatusOK,
			wantBody: `{"success":true,"data":"652f1a0e8b3c2d1e4f5a6b7c"}`,
		},
		{
			name:     "missing",
			res:      EditResult{},
			wantCode: http.StatusNotFound,
			wantBody: `{"success":false,"error":"Book not found"}`,
		},
		{
			name:     "invalid id",
			err:      ErrInvalidID,
			wantCode: http.StatusBadRequest,
			wantBody: `{"success":false,"error":"Invalid book id"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.EXPECT().Replace(gomock.Any(), dune.ID, details).Return(tt.res, tt.err)

			w := httptest.NewRecorder()
			r := testutil.NewRequest(http.MethodPut, "/books/"+dune.ID, map[string]any{
				"title":  "Dune Messiah",
				"author": "Frank Herbert",
			})
			handler.Replace(w, testutil.WithURLParams(r, "id", dune.ID))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestHTTPHandler_Delete(t *testing.T) {
	mockRepo, handler := newTestHandler(t)

	t.Run("deleted", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), dune.ID).Return(true, nil)

		w := httptest.NewRecorder()
		handler.Delete(w, testutil.WithURLParams(testutil.NewRequest(http.MethodDelete, "/books/"+dune.ID, nil), "id", dune.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":"652f1a0e8b3c2d1e4f5a6b7c"}`, w.Body.String())
	})

	t.Run("nothing deleted", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), dune.ID).Return(false, nil)

		w := httptest.NewRecorder()
		handler.Delete(w, testutil.WithURLParams(testutil.NewRequest(http.MethodDelete, "/books/"+dune.ID, nil), "id", dune.ID))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_AddReview(t *testing.T) {
	mockRepo, handler := newTestHandler(t)

	t.Run("appended", func(t *testing.T) {
		mockRepo.EXPECT().AddReview(gomock.Any(), dune.ID, "A classic").Return(true, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/reviews/"+dune.ID, map[string]any{"reviews": "A classic"})
		handler.AddReview(w, testutil.WithURLParams(r, "id", dune.ID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"message":"reviews added successfully"}}`, w.Body.String())
	})

	t.Run("structured review", func(t *testing.T) {
		mockRepo.EXPECT().AddReview(gomock.Any(), dune.ID, map[string]any{"user": "ann", "rating": float64(5)}).Return(true, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/reviews/"+dune.ID, map[string]any{
			"reviews": map[string]any{"user": "ann", "rating": 5},
		})
		handler.AddReview(w, testutil.WithURLParams(r, "id", dune.ID))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		mockRepo.EXPECT().AddReview(gomock.Any(), dune.ID, "hm").Return(false, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/reviews/"+dune.ID, map[string]any{"reviews": "hm"})
		handler.AddReview(w, testutil.WithURLParams(r, "id", dune.ID))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Book not found"}`, w.Body.String())
	})
}
