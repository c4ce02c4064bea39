package router

import (
	"net/http"
	"strings"
)

const knowledgeTokenHeader = "X-Knowledge-Token"

// requireKnowledgeToken enforces a shared token for knowledge ingestion.
// When expected is empty, ingestion is disabled rather than open.
func requireKnowledgeToken(expected string) func(http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				http.Error(w, "knowledge ingestion disabled", http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(r.Header.Get(knowledgeTokenHeader))
			if token == "" || token != expected {
				http.Error(w, "invalid knowledge token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
