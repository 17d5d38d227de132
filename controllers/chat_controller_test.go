package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"subjectswap_server/logger"
	"subjectswap_server/models"
	"subjectswap_server/services"
)

func newChatRouter(users ...models.UserProfile) *mux.Router {
	store := services.NewMemoryConversationStore()
	log := services.NewConversationLog(store, logger.NewNop())
	svc := services.NewChatService(log, services.NewMemoryUserDirectory(users...), logger.NewNop())
	controller := NewChatController(svc, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/chat/users/{id}", controller.GetUserInfo).Methods("GET")
	return r
}

func TestGetUserInfoReturnsSummaryOnly(t *testing.T) {
	r := newChatRouter(models.UserProfile{
		ID:            "bob",
		Username:      "bob",
		Email:         "bob@private.example",
		ProfilePicURL: "https://cdn/bob.png",
		Description:   "likes physics",
		Active:        true,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/users/bob", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "private.example") {
		t.Errorf("body leaks email: %s", rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"convo_id":   "bob",
		"name":       "bob",
		"profilePic": "https://cdn/bob.png",
	}
	if len(body) != len(want) {
		t.Fatalf("fields = %v, want %v", body, want)
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
}

func TestGetUserInfoInactiveUser(t *testing.T) {
	r := newChatRouter(models.UserProfile{ID: "gone", Username: "gone", Active: false})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/users/gone", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
