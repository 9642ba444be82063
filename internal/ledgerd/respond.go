package ledgerd

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

// respondWithError writes msg as a plain-text body. Clients surface the
// body verbatim.
func respondWithError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

func respondWithValidationError(errs map[string]string, w http.ResponseWriter) {
	msgs := make([]string, 0, len(errs))
	for _, msg := range errs {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	respondWithError(w, http.StatusBadRequest, strings.Join(msgs, "; "))
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
