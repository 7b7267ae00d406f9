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

func TestMessageThreadAndReadEndpoints(t *testing.T) {
	engine, db := setupTestRouter(t)
	alice, aliceToken := createTestUserAndToken(t, db, "alice@example.com", "Alice")
	bob, bobToken := createTestUserAndToken(t, db, "bob@example.com", "Bob")

	send := func(token, to, content string) models.Message {
		req := httptest.NewRequest("POST", "/api/v1/messages", jsonBody(t, map[string]interface{}{
			"receiver_email": to, "content": content,
		}))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var msg models.Message
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
		return msg
	}

	first := send(aliceToken, bob.Email, "Is the lasagna still available?")
	send(bobToken, alice.Email, "Two portions left!")

	// Full thread, oldest first.
	req := httptest.NewRequest("GET", "/api/v1/messages/with/"+bob.Email, nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var thread struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &thread))
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, first.ID, thread.Messages[0].ID)

	// Bob marks Alice's message read by id; his own message is skipped.
	req = httptest.NewRequest("PUT", "/api/v1/messages/read", jsonBody(t, map[string]interface{}{
		"ids": []string{thread.Messages[0].ID.String(), thread.Messages[1].ID.String()},
	}))
	req.Header.Set("Authorization", "Bearer "+bobToken)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var marked struct {
		Updated int64 `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &marked))
	assert.Equal(t, int64(1), marked.Updated)

	req = httptest.NewRequest("GET", "/api/v1/messages/unread-count", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var unread struct {
		UnreadCount int64 `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unread))
	assert.Equal(t, int64(0), unread.UnreadCount)
}
