package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// newStatusServer serves a single read-only endpoint, /state, returning
// mon's accumulated events as JSON.
func newStatusServer(addr string, mon *stateMonitor) *http.Server {
	router := mux.NewRouter()
	api := router.PathPrefix("/").Subrouter()
	api.HandleFunc("/state", handleState(mon)).Methods("GET")

	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}

func handleState(mon *stateMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(mon.snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
