package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/corebank/ledger/internal/events/kafka"
	"github.com/corebank/ledger/internal/interfaces"
	"github.com/corebank/ledger/internal/ledger"
	"github.com/corebank/ledger/internal/models"
	"github.com/corebank/ledger/internal/money"
	"github.com/corebank/ledger/internal/storage/memory"
	"github.com/corebank/ledger/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	var store interfaces.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := postgres.Open(dsn)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		store = pg
	} else {
		store = memory.NewStore()
	}
	defer store.Close()

	var publisher interfaces.EventPublisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		p := kafka.NewPublisher(strings.Split(brokers, ","), "ledger.transactions")
		defer p.Close()
		publisher = p
	}

	ledgerService := ledger.New(store, publisher)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			AccountNumber string `json:"account_number"`
			Name          string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		acct, err := ledgerService.CreateAccount(r.Context(), req.AccountNumber, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, acct)
	})

	http.HandleFunc("/accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		number := r.URL.Query().Get("account_number")
		if number == "" {
			http.Error(w, "account_number is a mandatory field", http.StatusBadRequest)
			return
		}

		acct, err := ledgerService.GetAccount(r.Context(), number)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, acct)
	})

	http.HandleFunc("/deposit", func(w http.ResponseWriter, r *http.Request) {
		handleMovement(w, r, ledgerService.Deposit)
	})

	http.HandleFunc("/withdraw", func(w http.ResponseWriter, r *http.Request) {
		handleMovement(w, r, ledgerService.Withdraw)
	})

	http.HandleFunc("/transfer", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			FromAccount string `json:"from_account"`
			ToAccount   string `json:"to_account"`
			Amount      string `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := ledgerService.Transfer(r.Context(), req.FromAccount, req.ToAccount, req.Amount); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "transfer completed"})
	})

	http.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		number := r.URL.Query().Get("account_number")
		if number == "" {
			http.Error(w, "account_number is a mandatory field", http.StatusBadRequest)
			return
		}

		records, err := ledgerService.ListTransactions(r.Context(), number)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Println("Starting server on", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

// handleMovement serves the deposit and withdraw endpoints, which share a
// request shape and a response shape.
func handleMovement(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, number, amount string) (models.Account, error)) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		AccountNumber string `json:"account_number"`
		Amount        string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	acct, err := op(r.Context(), req.AccountNumber, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

// statusFor maps the ledger's typed failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, money.ErrInvalidFormat),
		errors.Is(err, money.ErrNotPositive),
		errors.Is(err, models.ErrInvalidAccountNumber),
		errors.Is(err, models.ErrSelfTransfer):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateAccount),
		errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
