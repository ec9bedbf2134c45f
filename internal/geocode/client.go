package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"kampalabites/internal/structs"
	"kampalabites/internal/zones"
	"kampalabites/pkg/config"
	"kampalabites/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var Module = fx.Provide(New)

// MinQueryLen is the trimmed length below which no network call is made.
const MinQueryLen = 2

const displayNameParts = 3

// Result carries classified candidates. Stale marks a cancelled lookup, so the
// orchestrator can tell "no suggestions" from "input already outdated".
type Result struct {
	Candidates []structs.DeliverabilityResult
	Stale      bool
}

// Searcher is the place-search port consumed by the location session.
type Searcher interface {
	Search(ctx context.Context, query string) Result
}

type (
	Params struct {
		fx.In
		Config config.IConfig
		Logger logger.Logger
		Grader *zones.Grader
	}

	client struct {
		baseURL string
		country string
		lang    string
		limit   int
		bias    structs.GeoPoint

		http    *http.Client
		limiter *rate.Limiter
		grader  *zones.Grader
		logger  logger.Logger
	}
)

func New(p Params) Searcher {
	perSec := p.Config.GetInt("geocoder.rate_per_sec")
	if perSec <= 0 {
		perSec = 1
	}
	return &client{
		baseURL: strings.TrimRight(p.Config.GetString("geocoder.base_url"), "/"),
		country: p.Config.GetString("geocoder.country"),
		lang:    p.Config.GetString("geocoder.lang"),
		limit:   p.Config.GetInt("geocoder.limit"),
		bias: structs.GeoPoint{
			Lat: p.Config.GetFloat64("geocoder.bias_lat"),
			Lng: p.Config.GetFloat64("geocoder.bias_lng"),
		},
		// supersede-cancellation is the real deadline; the client timeout is
		// only a safety net against a wedged provider
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
		grader:  p.Grader,
		logger:  p.Logger,
	}
}

// NewClient builds a searcher against an explicit base URL, for tests.
func NewClient(baseURL, country, lang string, limit int, bias structs.GeoPoint, grader *zones.Grader, lg logger.Logger) Searcher {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
		lang:    lang,
		limit:   limit,
		bias:    bias,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(100), 100),
		grader:  grader,
		logger:  lg,
	}
}

type photonResponse struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Properties struct {
		Name     string `json:"name"`
		Locality string `json:"locality"`
		District string `json:"district"`
		City     string `json:"city"`
		County   string `json:"county"`
		Country  string `json:"country"`
		OsmValue string `json:"osm_value"`
		Type     string `json:"type"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
}

// Search queries the place-search provider and returns fully classified
// candidates. Provider failures of any kind degrade to an empty result: the
// storefront shows "no suggestions", never a transport error.
func (c *client) Search(ctx context.Context, query string) Result {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLen {
		return Result{Candidates: []structs.DeliverabilityResult{}}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Candidates: []structs.DeliverabilityResult{}, Stale: true}
	}

	params := url.Values{
		"q":     {q},
		"limit": {strconv.Itoa(c.limit)},
		"lat":   {strconv.FormatFloat(c.bias.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(c.bias.Lng, 'f', -1, 64)},
		"lang":  {c.lang},
	}
	reqURL := fmt.Sprintf("%s/api?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Warn(ctx, "geocoder: bad request url", zap.Error(err))
		return Result{Candidates: []structs.DeliverabilityResult{}}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return Result{Candidates: []structs.DeliverabilityResult{}, Stale: true}
		}
		c.logger.Warn(ctx, "geocoder: request failed", zap.Error(err), zap.String("query", q))
		return Result{Candidates: []structs.DeliverabilityResult{}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn(ctx, "geocoder: non-2xx response",
			zap.Int("status", resp.StatusCode), zap.String("query", q))
		return Result{Candidates: []structs.DeliverabilityResult{}}
	}

	var body photonResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn(ctx, "geocoder: malformed response", zap.Error(err), zap.String("query", q))
		return Result{Candidates: []structs.DeliverabilityResult{}}
	}

	return Result{Candidates: c.classify(c.collect(body.Features))}
}

func (c *client) collect(features []photonFeature) []structs.PlaceCandidate {
	seen := map[string]struct{}{}
	out := []structs.PlaceCandidate{}

	for _, f := range features {
		props := f.Properties
		if !strings.EqualFold(props.Country, c.country) {
			continue
		}

		display := buildDisplayName(props.Name, props.Locality, props.District, props.City, props.County)
		if display == "" {
			continue
		}
		if _, dup := seen[display]; dup {
			continue
		}
		seen[display] = struct{}{}

		cand := structs.PlaceCandidate{
			Name:        props.Name,
			DisplayName: display,
			PlaceType:   props.OsmValue,
			Country:     props.Country,
		}
		if cand.PlaceType == "" {
			cand.PlaceType = props.Type
		}
		if len(f.Geometry.Coordinates) >= 2 {
			cand.Point = &structs.GeoPoint{
				Lat: f.Geometry.Coordinates[1],
				Lng: f.Geometry.Coordinates[0],
			}
		}
		out = append(out, cand)
	}
	return out
}

func (c *client) classify(cands []structs.PlaceCandidate) []structs.DeliverabilityResult {
	results := make([]structs.DeliverabilityResult, 0, len(cands))
	for _, cand := range cands {
		results = append(results, c.grader.Grade(cand))
	}
	return results
}

// buildDisplayName joins up to 3 non-blank, non-repeating parts in priority
// order: name, locality, district, city, county.
func buildDisplayName(parts ...string) string {
	picked := make([]string, 0, displayNameParts)
	seen := map[string]struct{}{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		picked = append(picked, p)
		if len(picked) == displayNameParts {
			break
		}
	}
	return strings.Join(picked, ", ")
}
