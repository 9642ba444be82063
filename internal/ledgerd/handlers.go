package ledgerd

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/calculator"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/storage"
)

type expenseRequest struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Amount         decimal.Decimal `json:"amount"`
	PaidByID       int64           `json:"paidById" validate:"required,gt=0"`
	ParticipantIDs string          `json:"participantIds" validate:"required"`
}

type personRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Amounts are written as JSON numbers.

type expenseJSON struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Amount         json.Number    `json:"amount"`
	PaidBy         *models.Person `json:"paidBy"`
	ParticipantIDs []int64        `json:"participantIds"`
}

type settlementJSON struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount json.Number `json:"amount"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toExpenseJSON(e models.Expense) expenseJSON {
	return expenseJSON{
		ID:             e.ID,
		Title:          e.Title,
		Amount:         number(e.Amount),
		PaidBy:         e.PaidBy,
		ParticipantIDs: e.ParticipantIDs,
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (s *Server) listPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.store.ListPeople(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, people)
}

func (s *Server) addPerson(w http.ResponseWriter, r *http.Request) {
	req := &personRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validator.Struct(req); err != nil {
		// translate all error at once
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			respondWithValidationError(errs.Translate(s.translator), w)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	person, err := s.store.CreatePerson(r.Context(), req.Name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("Person added", "id", person.ID, "name", person.Name)
	respondWithJSON(w, http.StatusCreated, person)
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request) {
	req := &expenseRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	if err := s.validator.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			respondWithValidationError(errs.Translate(s.translator), w)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	participants, err := parseIDs(req.ParticipantIDs)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := s.store.CreateExpense(r.Context(), storage.NewExpense{
		Title:          req.Title,
		Amount:         req.Amount,
		PaidByID:       req.PaidByID,
		ParticipantIDs: participants,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUnknownPerson) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("Expense added", "id", expense.ID, "title", expense.Title, "amount", expense.Amount.String())
	respondWithJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	balances, ok := s.balances(w, r)
	if !ok {
		return
	}

	out := make(map[string]json.Number, len(balances))
	for name, bal := range balances {
		out[name] = number(bal)
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (s *Server) getSettlements(w http.ResponseWriter, r *http.Request) {
	balances, ok := s.balances(w, r)
	if !ok {
		return
	}

	transfers := calculator.SuggestSettlements(balances)
	out := make([]settlementJSON, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, settlementJSON{From: t.From, To: t.To, Amount: number(t.Amount)})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// balances computes current balances, writing an error response on failure.
func (s *Server) balances(w http.ResponseWriter, r *http.Request) (map[string]decimal.Decimal, bool) {
	people, err := s.store.ListPeople(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	members := make([]calculator.Member, 0, len(people))
	for _, p := range people {
		members = append(members, calculator.Member{ID: p.ID, Name: p.Name})
	}
	inputs := make([]calculator.ExpenseForBalance, 0, len(expenses))
	for _, e := range expenses {
		if e.PaidBy == nil {
			continue
		}
		inputs = append(inputs, calculator.ExpenseForBalance{
			Amount:         e.Amount,
			PayerID:        e.PaidBy.ID,
			ParticipantIDs: e.ParticipantIDs,
		})
	}

	balances, err := calculator.CalculateBalances(members, inputs)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return balances, true
}

// parseIDs parses a comma-separated id list such as "1, 2,3".
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("participantIds must be a comma-separated list of person ids")
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("participantIds must name at least one person")
	}
	return ids, nil
}
