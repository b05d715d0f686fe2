package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/ledger"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/pagination"
)

type accountJSON struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Balance          int64  `json:"balance"`
	BalanceFormatted string `json:"balanceFormatted"`
	CardID           string `json:"cardId,omitempty"`
	CreatedAt        int64  `json:"createdAt"`
}

func toAccountJSON(a *models.Account) accountJSON {
	return accountJSON{
		ID:               a.ID,
		Name:             a.Name,
		Balance:          int64(a.Balance),
		BalanceFormatted: a.Balance.Format(),
		CardID:           a.CardID,
		CreatedAt:        a.CreatedAt,
	}
}

type transactionJSON struct {
	ID              int64  `json:"id"`
	Kind            string `json:"kind"`
	Ref             int64  `json:"ref,omitempty"`
	SenderGroupID   int64  `json:"senderGroupId"`
	ReceiverGroupID int64  `json:"receiverGroupId"`
	Amount          int64  `json:"amount"`
	AmountFormatted string `json:"amountFormatted"`
	Description     string `json:"description,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	Undone          bool   `json:"undone"`
}

func toTransactionJSON(tr *models.Transaction) transactionJSON {
	out := transactionJSON{
		ID:              tr.ID,
		Kind:            string(tr.Type.Kind),
		SenderGroupID:   tr.SenderGroupID,
		ReceiverGroupID: tr.ReceiverGroupID,
		Amount:          int64(tr.Amount),
		AmountFormatted: tr.Amount.Format(),
		Description:     tr.Description,
		CreatedAt:       tr.CreatedAt,
		Undone:          tr.Undone,
	}
	if tr.Type.HasRef() {
		out.Ref = tr.Type.Ref
	}
	return out
}

type historyEntryJSON struct {
	Transaction    transactionJSON `json:"transaction"`
	Share          int64           `json:"share"`
	ShareFormatted string          `json:"shareFormatted"`
}

type pageJSON[T any] struct {
	Items  []T `json:"items"`
	Offset int `json:"offset"`
	Length int `json:"length"`
	Total  int `json:"total"`
}

func toHistoryJSON(page pagination.Page[ledger.HistoryEntry]) pageJSON[historyEntryJSON] {
	items := make([]historyEntryJSON, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, historyEntryJSON{
			Transaction:    toTransactionJSON(&e.Transaction),
			Share:          int64(e.Share),
			ShareFormatted: e.Share.FormatDiff(),
		})
	}
	return pageJSON[historyEntryJSON]{
		Items:  items,
		Offset: page.Offset,
		Length: page.Length,
		Total:  page.Total,
	}
}

type articleJSON struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Barcode        string `json:"barcode,omitempty"`
	Price          int64  `json:"price"`
	PriceFormatted string `json:"priceFormatted"`
	CreatedAt      int64  `json:"createdAt"`
}

func toArticleJSON(a *models.Article) articleJSON {
	return articleJSON{
		ID:             a.ID,
		Name:           a.Name,
		Barcode:        a.Barcode,
		Price:          int64(a.Price),
		PriceFormatted: a.Price.Format(),
		CreatedAt:      a.CreatedAt,
	}
}

type errorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the typed ledger errors onto HTTP statuses. Invalid input
// and limit violations are client errors; integrity failures are logged
// loudly and hidden behind a plain 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr     *money.ParseError
		validation   *ledger.ValidationError
		notFound     *ledger.NotFoundError
		tooMuch      *ledger.TooMuchMoneyError
		tooLittle    *ledger.TooLittleMoneyError
		integrityErr *ledger.DataIntegrityError
	)

	switch {
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error(), Code: "invalid_amount"})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error(), Code: "invalid_request"})
	case errors.As(err, &tooMuch):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error(), Code: "balance_too_high"})
	case errors.As(err, &tooLittle):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error(), Code: "balance_too_low"})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error(), Code: "not_found"})
	case errors.As(err, &integrityErr):
		slog.Error("Data integrity failure", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal error", Code: "internal"})
	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal error", Code: "internal"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid JSON body", Code: "invalid_request"})
		return false
	}
	return true
}
