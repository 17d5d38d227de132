package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"subjectswap_server/logger"
	"subjectswap_server/models"
	"subjectswap_server/services"
)

func newSearchRouter(users ...models.UserProfile) *mux.Router {
	svc := services.NewSearchService(services.NewMemoryUserDirectory(users...), logger.NewNop())
	controller := NewSearchController(svc, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/search/person", controller.SearchPerson).Methods("POST")
	return r
}

func TestSearchPerson(t *testing.T) {
	r := newSearchRouter(
		models.UserProfile{ID: "1", Username: "priya", Email: "p@private.example", ProfilePicURL: "https://cdn/p.png", Active: true},
		models.UserProfile{ID: "2", Username: "omar", Active: true},
	)

	rec := postJSON(t, r, "/api/search/person", SearchRequest{Query: "pri"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var results []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v, want one", results)
	}
	want := map[string]interface{}{"_id": "1", "username": "priya", "profilePicUrl": "https://cdn/p.png"}
	if len(results[0]) != len(want) {
		t.Fatalf("fields = %v, want %v", results[0], want)
	}
	for k, v := range want {
		if results[0][k] != v {
			t.Errorf("%s = %v, want %v", k, results[0][k], v)
		}
	}
}

func TestSearchPersonRequiresQuery(t *testing.T) {
	r := newSearchRouter()

	rec := postJSON(t, r, "/api/search/person", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
