// Package mealdb provides a rate limited client for TheMealDB public API
package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxIngredientSlots is the number of strIngredientN/strMeasureN pairs a meal carries
const maxIngredientSlots = 20

// Client implements outbound.RecipeSource against TheMealDB
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new TheMealDB client
func NewClient(cfg config.ImporterConfig, logger *zap.Logger) *Client {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	logger.Info("TheMealDB client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		logger:  logger.Named("mealdb-client"),
	}
}

var _ outbound.RecipeSource = (*Client)(nil)

type ingredientList struct {
	Meals []struct {
		ID          string `json:"idIngredient"`
		Name        string `json:"strIngredient"`
		Description string `json:"strDescription"`
	} `json:"meals"`
}

type mealRefList struct {
	Meals []struct {
		ID        string `json:"idMeal"`
		Name      string `json:"strMeal"`
		Thumbnail string `json:"strMealThumb"`
	} `json:"meals"`
}

// mealList keeps each meal as a raw map because the ingredient slots are
// numbered fields (strIngredient1..20) that are null or blank when unused
type mealList struct {
	Meals []map[string]interface{} `json:"meals"`
}

// ListIngredients returns every ingredient TheMealDB knows about
func (c *Client) ListIngredients(ctx context.Context) ([]outbound.SourceIngredient, error) {
	var resp ingredientList
	if err := c.get(ctx, "list.php", url.Values{"i": {"list"}}, &resp); err != nil {
		return nil, err
	}

	items := make([]outbound.SourceIngredient, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		items = append(items, outbound.SourceIngredient{
			ID:          m.ID,
			Name:        strings.TrimSpace(m.Name),
			Description: strings.TrimSpace(m.Description),
		})
	}
	return items, nil
}

// MealsByCategory lists the meals filed under category
func (c *Client) MealsByCategory(ctx context.Context, category string) ([]outbound.SourceMealRef, error) {
	var resp mealRefList
	if err := c.get(ctx, "filter.php", url.Values{"c": {category}}, &resp); err != nil {
		return nil, err
	}

	refs := make([]outbound.SourceMealRef, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		refs = append(refs, outbound.SourceMealRef{
			ID:        m.ID,
			Name:      strings.TrimSpace(m.Name),
			Thumbnail: m.Thumbnail,
		})
	}
	return refs, nil
}

// LookupMeal fetches a full meal record. It returns nil when the id is unknown.
func (c *Client) LookupMeal(ctx context.Context, id string) (*outbound.SourceMeal, error) {
	var resp mealList
	if err := c.get(ctx, "lookup.php", url.Values{"i": {id}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return nil, nil
	}

	raw := resp.Meals[0]
	meal := &outbound.SourceMeal{
		ID:           field(raw, "idMeal"),
		Name:         field(raw, "strMeal"),
		Category:     field(raw, "strCategory"),
		Area:         field(raw, "strArea"),
		Instructions: field(raw, "strInstructions"),
		Thumbnail:    field(raw, "strMealThumb"),
	}

	for i := 1; i <= maxIngredientSlots; i++ {
		name := field(raw, fmt.Sprintf("strIngredient%d", i))
		measure := field(raw, fmt.Sprintf("strMeasure%d", i))
		if name == "" || measure == "" {
			continue
		}
		meal.Ingredients = append(meal.Ingredients, outbound.SourceMealIngredient{
			Name:    name,
			Measure: measure,
		})
	}

	return meal, nil
}

// get waits for the limiter, performs the request and decodes the JSON body
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	target := c.baseURL + "/" + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call TheMealDB %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("TheMealDB returned an error status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("TheMealDB %s returned status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TheMealDB %s response: %w", endpoint, err)
	}

	c.logger.Debug("TheMealDB request completed", zap.String("endpoint", endpoint))
	return nil
}

func field(raw map[string]interface{}, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
