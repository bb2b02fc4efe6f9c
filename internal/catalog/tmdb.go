package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"watchlist-service/internal/apperr"
)

// Movie is a catalog search result. Field names follow the provider's JSON so
// clients receive the same shape whether or not the response was cached.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Tagline      string  `json:"tagline"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Genres       []Genre `json:"genres"`
}

// SearchParams are the catalog filters. With a non-empty Query the text
// search endpoint is used, otherwise discover.
type SearchParams struct {
	Query  string
	Genre  string
	Year   int
	Rating float64
	Page   int
}

const (
	// Discover results are noisy without a vote floor; the floor is raised
	// when filtering by rating so averages are meaningful.
	minVotes       = 100
	minVotesRating = 2000
)

type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
}

func NewClient(apiKey, baseURL, language string) *Client {
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: language,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

var errNotFound = apperr.New(apperr.CodeMovieNotFound, "movie not found")

type pageResponse struct {
	Page    int     `json:"page"`
	Results []Movie `json:"results"`
}

func (c *Client) Popular(ctx context.Context, page int) ([]Movie, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))

	var out pageResponse
	if err := c.get(ctx, "/movie/popular", q, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Results), nil
}

func (c *Client) Search(ctx context.Context, p SearchParams) ([]Movie, error) {
	q := url.Values{}
	q.Set("include_adult", "false")
	q.Set("page", strconv.Itoa(max(p.Page, 1)))

	path := "/discover/movie"
	if p.Query != "" {
		path = "/search/movie"
		q.Set("query", p.Query)
		if p.Year > 0 {
			q.Set("primary_release_year", strconv.Itoa(p.Year))
		}
	} else {
		if p.Genre != "" {
			q.Set("with_genres", p.Genre)
		}
		if p.Year > 0 {
			q.Set("primary_release_year", strconv.Itoa(p.Year))
		}
		if p.Rating > 0 {
			q.Set("vote_average.gte", strconv.FormatFloat(p.Rating, 'f', -1, 64))
			q.Set("vote_count.gte", strconv.Itoa(minVotesRating))
		} else {
			q.Set("vote_count.gte", strconv.Itoa(minVotes))
		}
		q.Set("sort_by", "popularity.desc")
	}

	var out pageResponse
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Results), nil
}

func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", url.Values{}, &out); err != nil {
		return nil, err
	}
	if out.Genres == nil {
		return []Genre{}, nil
	}
	return out.Genres, nil
}

func (c *Client) Movie(ctx context.Context, id int64) (MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), url.Values{}, &out); err != nil {
		return MovieDetails{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstreamUnavailable, "failed to query movie catalog", err)
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstreamUnavailable, "failed to query movie catalog", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstreamUnavailable, "failed to query movie catalog", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return errNotFound
	case res.StatusCode != http.StatusOK:
		return apperr.Wrap(apperr.CodeUpstreamUnavailable, "failed to query movie catalog",
			fmt.Errorf("tmdb %s: status %d", path, res.StatusCode))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.CodeUpstreamUnavailable, "failed to query movie catalog", err)
	}
	return nil
}

func nonNil(m []Movie) []Movie {
	if m == nil {
		return []Movie{}
	}
	return m
}
