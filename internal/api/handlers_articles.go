package api

import (
	"net/http"

	"github.com/trackline/trackline/internal/db"
	"github.com/trackline/trackline/internal/validate"
)

// handleListArticles returns articles, optionally filtered by a headline
// substring via ?q=.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.db.ListArticles(r.Context(), db.ArticleListOpts{
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, articles)
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ArticleCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	article, err := s.db.CreateArticle(r.Context(),
		validate.Str(clean, "headline"), validate.Str(clean, "link"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, article)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	article, err := s.db.GetArticle(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, article)
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ArticleUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	article, err := s.db.UpdateArticle(r.Context(), id, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, article)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteArticle(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "article deleted")
}

func (s *Server) handleArticleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetArticleStats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, stats)
}
