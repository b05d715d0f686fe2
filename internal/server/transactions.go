package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/pagination"
)

type amountOp func(ctx context.Context, accountID int64, amount money.Value, description string) (*models.Transaction, error)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req pagination.Request
	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}

	page, err := s.engine.History(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryJSON(page))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, s.engine.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, s.engine.Withdraw)
}

// handleAmountOp serves deposit and withdraw, which share a request shape.
// Amounts arrive as decimal strings exactly as typed at the terminal.
func (s *Server) handleAmountOp(w http.ResponseWriter, r *http.Request, op amountOp) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tr, err := op(r.Context(), id, amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tr))
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		To          int64  `json:"to"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tr, err := s.engine.Send(r.Context(), id, req.To, amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tr))
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Participants []int64 `json:"participants"`
		Total        string  `json:"total"`
		Description  string  `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	total, err := money.Parse(req.Total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tr, err := s.engine.Split(r.Context(), id, req.Participants, total, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tr))
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		ArticleID int64 `json:"articleId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	tr, err := s.engine.Buy(r.Context(), id, req.ArticleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tr))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tr, err := s.engine.Undo(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(tr))
}
