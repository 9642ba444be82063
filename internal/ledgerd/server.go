// Package ledgerd is a small development ledger service. It stores people
// and expenses in sqlite, splits every expense equally among its
// participants and serves balances and a settlement plan over HTTP+JSON.
package ledgerd

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gorilla/mux"

	"github.com/mmynk/splitsync/internal/storage"
)

// DefaultPrefix is the path prefix the ledger routes are mounted under.
const DefaultPrefix = "/expensebackend/api"

// Server serves the ledger REST routes.
type Server struct {
	Router *mux.Router

	store      storage.Store
	validator  *validator.Validate
	translator ut.Translator
}

// New builds a Server over store with routes mounted under prefix.
func New(store storage.Store, prefix string) (*Server, error) {
	s := &Server{
		store:     store,
		validator: validator.New(),
	}

	// Report json field names in validation messages.
	s.validator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	eng := en.New()
	uni := ut.New(eng, eng)
	var found bool
	s.translator, found = uni.GetTranslator("en")
	if !found {
		return nil, fmt.Errorf("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(s.validator, s.translator); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}

	s.Router = mux.NewRouter()
	s.Router.Use(loggingMiddleware, corsMiddleware)
	s.initializeRoutes(strings.TrimRight(prefix, "/"))
	return s, nil
}

func (s *Server) initializeRoutes(prefix string) {
	r := s.Router
	if prefix != "" {
		r = s.Router.PathPrefix(prefix).Subrouter()
	}
	r.HandleFunc("/expenses", s.listExpenses).Methods(http.MethodGet)
	r.HandleFunc("/expenses", s.addExpense).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/people", s.listPeople).Methods(http.MethodGet)
	r.HandleFunc("/people", s.addPerson).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/balances", s.getBalances).Methods(http.MethodGet)
	r.HandleFunc("/settle", s.getSettlements).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", r.Header.Get("X-Request-ID"),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
