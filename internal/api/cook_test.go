package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookDirectoryAndProfile(t *testing.T) {
	engine, db := setupTestRouter(t)
	cook, cookToken := createTestUserAndToken(t, db, "maria@example.com", "Maria")
	_, guestToken := createTestUserAndToken(t, db, "guest@example.com", "Sam")

	meal := createMealVia(t, engine, cookToken, "Lasagna Night", 4)

	// Guest leaves a review so the directory carries a rating.
	req := httptest.NewRequest("POST", "/api/v1/reviews", jsonBody(t, map[string]interface{}{
		"meal_id": meal.ID.String(), "rating": 5, "comment": "Wonderful",
	}))
	req.Header.Set("Authorization", "Bearer "+guestToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Directory lists only users with an open meal.
	req = httptest.NewRequest("GET", "/api/v1/cooks", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var directory struct {
		Cooks []struct {
			Email         string  `json:"email"`
			FullName      string  `json:"full_name"`
			AverageRating float64 `json:"average_rating"`
			ReviewCount   int64   `json:"review_count"`
		} `json:"cooks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &directory))
	require.Len(t, directory.Cooks, 1)
	assert.Equal(t, cook.Email, directory.Cooks[0].Email)
	assert.InDelta(t, 5.0, directory.Cooks[0].AverageRating, 0.001)
	assert.Equal(t, int64(1), directory.Cooks[0].ReviewCount)

	// Public cook page bundles profile, open meals, and reviews.
	req = httptest.NewRequest("GET", "/api/v1/cooks/"+cook.Email, nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		Cook struct {
			Email    string `json:"email"`
			FullName string `json:"full_name"`
		} `json:"cook"`
		Meals   []json.RawMessage `json:"meals"`
		Reviews []json.RawMessage `json:"reviews"`
		Rating  struct {
			ReviewCount int64 `json:"review_count"`
		} `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Maria", profile.Cook.FullName)
	assert.Len(t, profile.Meals, 1)
	assert.Len(t, profile.Reviews, 1)
	assert.Equal(t, int64(1), profile.Rating.ReviewCount)
}

func TestCookProfileNotFound(t *testing.T) {
	engine, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/cooks/nobody@example.com", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewListQueryParams(t *testing.T) {
	engine, db := setupTestRouter(t)
	cook, cookToken := createTestUserAndToken(t, db, "maria@example.com", "Maria")
	_, guestToken := createTestUserAndToken(t, db, "guest@example.com", "Sam")

	meal := createMealVia(t, engine, cookToken, "Lasagna Night", 4)

	req := httptest.NewRequest("POST", "/api/v1/reviews", jsonBody(t, map[string]interface{}{
		"meal_id": meal.ID.String(), "rating": 4, "comment": "Good",
	}))
	req.Header.Set("Authorization", "Bearer "+guestToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, query := range []string{"meal_id=" + meal.ID.String(), "cook_email=" + cook.Email} {
		req = httptest.NewRequest("GET", "/api/v1/reviews?"+query, nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var payload struct {
			Reviews []json.RawMessage `json:"reviews"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.Len(t, payload.Reviews, 1)
	}

	// Neither parameter given.
	req = httptest.NewRequest("GET", "/api/v1/reviews", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
