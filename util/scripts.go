package util

import (
	"net/http"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// WriteResponse writes data as an indented JSON body with the given status.
func WriteResponse(w http.ResponseWriter, status int, data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		log.Error("Encoding response: ", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		log.Warn("Writing response: ", err)
	}
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteResponse(w, status, map[string]interface{}{
		"error": msg,
	})
}
