package catalog

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"watchlist-service/internal/apperr"
	"watchlist-service/internal/validate"
)

type searchQuery struct {
	Query  string  `json:"query" validate:"max=200"`
	Genre  string  `json:"genre" validate:"omitempty,max=64"`
	Year   int     `json:"year" validate:"omitempty,gte=1870,lte=2100"`
	Rating float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
	Page   int     `json:"page" validate:"gte=1,lte=500"`
}

// parseSearch reads filters from the query string. Numeric fields that do not
// parse are reported as invalid input.
func parseSearch(r *http.Request) (searchQuery, error) {
	v := r.URL.Query()
	q := searchQuery{
		Query: strings.TrimSpace(v.Get("query")),
		Genre: strings.TrimSpace(v.Get("genre")),
		Page:  1,
	}
	fields := map[string]string{}

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fields["page"] = "must be a number"
		}
		q.Page = n
	}
	if s := v.Get("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fields["year"] = "must be a number"
		}
		q.Year = n
	}
	if s := v.Get("rating"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			fields["rating"] = "must be a number"
		}
		q.Rating = f
	}
	if len(fields) > 0 {
		return q, apperr.Invalid("invalid query parameters", fields)
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func fail(w http.ResponseWriter, op string, err error) {
	if !apperr.IsCode(err, apperr.CodeMovieNotFound) {
		log.Printf("catalog: %s: %v", op, err)
	}
	apperr.Write(w, err)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearch(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	key := fmt.Sprintf("catalog:popular:%d", q.Page)
	movies, err := cached(r.Context(), s, key, func() ([]Movie, error) {
		return s.provider.Popular(r.Context(), q.Page)
	})
	if err != nil {
		fail(w, "popular", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, movies)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearch(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	params := SearchParams{
		Query:  q.Query,
		Genre:  q.Genre,
		Year:   q.Year,
		Rating: q.Rating,
		Page:   q.Page,
	}
	key := fmt.Sprintf("catalog:search:%s|%s|%d|%g|%d",
		strings.ToLower(params.Query), params.Genre, params.Year, params.Rating, params.Page)
	movies, err := cached(r.Context(), s, key, func() ([]Movie, error) {
		return s.provider.Search(r.Context(), params)
	})
	if err != nil {
		fail(w, "search", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, movies)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := cached(r.Context(), s, "catalog:genres", func() ([]Genre, error) {
		return s.provider.Genres(r.Context())
	})
	if err != nil {
		fail(w, "genres", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, genres)
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.Write(w, errNotFound)
		return
	}

	movie, err := cached(r.Context(), s, fmt.Sprintf("catalog:movie:%d", id), func() (MovieDetails, error) {
		return s.provider.Movie(r.Context(), id)
	})
	if err != nil {
		fail(w, "movie", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, movie)
}
