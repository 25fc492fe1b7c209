// Package yts is a client for the YTS movie catalog API. Movie details are
// cached in Redis when a client is supplied, and concurrent identical lookups
// are collapsed through singleflight.
package yts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/metrics"
)

const (
	defaultBaseURL = "https://yts.mx/api/v2"
	redisCacheKey  = "mstream:yts:"

	maxResponseBytes = 2 << 20
)

type Client struct {
	baseURL  string
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
	group    singleflight.Group
}

type Config struct {
	BaseURL  string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		redis:    cfg.Redis,
		cacheTTL: cacheTTL,
	}
}

// Wire types for the YTS JSON envelope.

type listResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Data          struct {
		Movies []movieJSON `json:"movies"`
	} `json:"data"`
}

type detailsResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Data          struct {
		Movie movieJSON `json:"movie"`
	} `json:"data"`
}

type movieJSON struct {
	ID              int           `json:"id"`
	Title           string        `json:"title"`
	Year            int           `json:"year"`
	Rating          float64       `json:"rating"`
	Runtime         int           `json:"runtime"`
	Genres          []string      `json:"genres"`
	Summary         string        `json:"summary"`
	Language        string        `json:"language"`
	MediumCover     string        `json:"medium_cover_image"`
	BackgroundImage string        `json:"background_image"`
	ImdbCode        string        `json:"imdb_code"`
	Torrents        []torrentJSON `json:"torrents"`
}

type torrentJSON struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	Size    string `json:"size"`
	Seeds   int    `json:"seeds"`
	Peers   int    `json:"peers"`
}

func (m movieJSON) toDomain() domain.Movie {
	movie := domain.Movie{
		ID:        m.ID,
		Title:     m.Title,
		Year:      m.Year,
		Rating:    m.Rating,
		Runtime:   m.Runtime,
		Genres:    m.Genres,
		Summary:   m.Summary,
		Language:  m.Language,
		CoverURL:  m.MediumCover,
		BackLarge: m.BackgroundImage,
		ImdbCode:  m.ImdbCode,
	}
	for _, t := range m.Torrents {
		movie.Torrents = append(movie.Torrents, domain.TorrentDescriptor{
			URL:     t.URL,
			Quality: t.Quality,
			Size:    t.Size,
			Seeds:   t.Seeds,
			Peers:   t.Peers,
		})
	}
	return movie
}

func (c *Client) ListMovies(ctx context.Context, q ports.MovieQuery) ([]domain.Movie, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	params.Set("limit", strconv.Itoa(limit))
	if q.Quality != "" {
		params.Set("quality", q.Quality)
	}
	if strings.TrimSpace(q.Query) != "" {
		params.Set("query_term", strings.TrimSpace(q.Query))
	}

	var response listResponse
	if err := c.getJSON(ctx, "/list_movies.json", params, &response); err != nil {
		return nil, err
	}
	if response.Status != "ok" {
		return nil, fmt.Errorf("yts api: %s", response.StatusMessage)
	}

	movies := make([]domain.Movie, 0, len(response.Data.Movies))
	for _, m := range response.Data.Movies {
		movies = append(movies, m.toDomain())
	}
	return movies, nil
}

// GetMovie fetches detailed metadata for one movie. Results go through the
// Redis cache and concurrent callers for the same id share a single request.
func (c *Client) GetMovie(ctx context.Context, movieID int) (domain.Movie, error) {
	cacheKey := redisCacheKey + "movie:" + strconv.Itoa(movieID)

	if c.redis != nil {
		if data, err := c.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var movie domain.Movie
			if json.Unmarshal(data, &movie) == nil {
				metrics.CatalogRequestsTotal.WithLabelValues("cache_hit").Inc()
				return movie, nil
			}
		}
	}

	value, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		params := url.Values{"movie_id": {strconv.Itoa(movieID)}}
		var response detailsResponse
		if err := c.getJSON(ctx, "/movie_details.json", params, &response); err != nil {
			return nil, err
		}
		if response.Status != "ok" {
			return nil, fmt.Errorf("yts api: %s", response.StatusMessage)
		}
		// YTS answers "ok" with a zero movie for unknown ids.
		if response.Data.Movie.ID == 0 {
			return nil, domain.ErrNotFound
		}
		return response.Data.Movie.toDomain(), nil
	})
	if err != nil {
		return domain.Movie{}, err
	}
	movie := value.(domain.Movie)

	if c.redis != nil {
		if data, err := json.Marshal(movie); err == nil {
			_ = c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err()
		}
	}
	return movie, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	err := c.doGetJSON(ctx, path, params, out)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.CatalogRequestsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (c *Client) doGetJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("yts HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
