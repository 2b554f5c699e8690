package control

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/golang/glog"
)

type apolloQuery struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// NewHandler serves the automation schema at /api/v1/graphql (GET, query
// string) and /api/v2/graphql (POST, JSON body).
func NewHandler(a *Automation) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/graphql", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		glog.V(2).Info(query)
		res := a.Query(query, nil)
		json.NewEncoder(w).Encode(res)
	})

	mux.HandleFunc("/api/v2/graphql", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		var q apolloQuery
		if err := json.Unmarshal(body, &q); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		glog.V(2).Info(q.Query)

		res := a.Query(q.Query, q.Variables)
		for _, err := range res.Errors {
			glog.Error(err)
		}
		json.NewEncoder(w).Encode(res)
	})

	return mux
}
