package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/models"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	engine, db := setupTestRouter(t)
	_, token := createTestUserAndToken(t, db, "user@example.com", "Sam")

	req := httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminDeleteUserFreesEmail(t *testing.T) {
	engine, db := setupTestRouter(t)
	admin, adminToken := createTestUserAndToken(t, db, "admin@example.com", "Admin")
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)

	victim, victimToken := createTestUserAndToken(t, db, "victim@example.com", "Vic")
	createMealVia(t, engine, victimToken, "Lasagna Night", 4)

	req := httptest.NewRequest("DELETE", "/api/v1/admin/users/"+victim.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var meals int64
	require.NoError(t, db.Model(&models.Meal{}).Where("created_by = ?", victim.ID).Count(&meals).Error)
	assert.Equal(t, int64(0), meals)

	// The address must be able to register again: the unique email index
	// covers soft-deleted rows, so the delete has to be a real one.
	fresh := &models.User{Email: "victim@example.com", FullName: "Vic Again"}
	require.NoError(t, db.Create(fresh).Error)
}

func TestAdminStatsAndReviewModeration(t *testing.T) {
	engine, db := setupTestRouter(t)
	admin, adminToken := createTestUserAndToken(t, db, "admin@example.com", "Admin")
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)

	_, cookToken := createTestUserAndToken(t, db, "cook@example.com", "Maria")
	_, guestToken := createTestUserAndToken(t, db, "guest@example.com", "Sam")

	meal := createMealVia(t, engine, cookToken, "Lasagna Night", 4)

	req := httptest.NewRequest("POST", "/api/v1/reviews", jsonBody(t, map[string]interface{}{
		"meal_id": meal.ID.String(), "rating": 1, "comment": "Spam review",
	}))
	req.Header.Set("Authorization", "Bearer "+guestToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, db.Model(&models.Meal{}).Where("id = ?", meal.ID).
		Update("portions_claimed", 2).Error)

	req = httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		Users           int64 `json:"users"`
		Meals           int64 `json:"meals"`
		Reviews         int64 `json:"reviews"`
		PortionsClaimed int64 `json:"portions_claimed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Users)
	assert.Equal(t, int64(1), stats.Meals)
	assert.Equal(t, int64(1), stats.Reviews)
	assert.Equal(t, int64(2), stats.PortionsClaimed)

	var review models.Review
	require.NoError(t, db.First(&review).Error)

	req = httptest.NewRequest("DELETE", "/api/v1/admin/reviews/"+review.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var remaining int64
	require.NoError(t, db.Model(&models.Review{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	req = httptest.NewRequest("DELETE", "/api/v1/admin/reviews/"+review.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
