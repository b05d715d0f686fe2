package server

import (
	"net/http"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.engine.Articles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]articleJSON, 0, len(articles))
	for i := range articles {
		out = append(out, toArticleJSON(&articles[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Barcode string `json:"barcode"`
		Price   string `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	article, err := s.engine.CreateArticle(r.Context(), req.Name, req.Barcode, price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toArticleJSON(article))
}

func (s *Server) handleSetArticlePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Price string `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.engine.SetArticlePrice(r.Context(), id, price); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
