package stockapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bobmcallan/stockview/internal/models"
)

func portfolioPath(id int64) string {
	return fmt.Sprintf("/portfolio/%d", id)
}

func holdingPath(portfolioID, holdingID int64) string {
	return fmt.Sprintf("/portfolio/%d/holdings/%d", portfolioID, holdingID)
}

// portfolioCall performs a request whose response is a Portfolio snapshot.
func (c *Client) portfolioCall(ctx context.Context, method, path string, body interface{}) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := c.do(ctx, method, path, nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePortfolio creates a named portfolio
func (c *Client) CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	return c.portfolioCall(ctx, http.MethodPost, "/portfolio", map[string]string{"name": name})
}

// GetPortfolio retrieves a portfolio with its holdings
func (c *Client) GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error) {
	return c.portfolioCall(ctx, http.MethodGet, portfolioPath(id), nil)
}

// AddHolding appends a holding and returns the updated portfolio
func (c *Client) AddHolding(ctx context.Context, portfolioID int64, h models.NewHolding) (*models.Portfolio, error) {
	return c.portfolioCall(ctx, http.MethodPost, portfolioPath(portfolioID)+"/holdings", h)
}

// UpdateHolding patches qty and/or avg_price of a holding
func (c *Client) UpdateHolding(ctx context.Context, portfolioID, holdingID int64, patch models.HoldingPatch) (*models.Portfolio, error) {
	return c.portfolioCall(ctx, http.MethodPatch, holdingPath(portfolioID, holdingID), patch)
}

// DeleteHolding removes a holding and returns the updated portfolio
func (c *Client) DeleteHolding(ctx context.Context, portfolioID, holdingID int64) (*models.Portfolio, error) {
	return c.portfolioCall(ctx, http.MethodDelete, holdingPath(portfolioID, holdingID), nil)
}

// DeletePortfolio removes a portfolio. The backend treats a missing id as success.
func (c *Client) DeletePortfolio(ctx context.Context, portfolioID int64) (*models.DeleteResult, error) {
	var out models.DeleteResult
	if err := c.do(ctx, http.MethodDelete, portfolioPath(portfolioID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSummary retrieves server-aggregated positions and totals
func (c *Client) GetSummary(ctx context.Context, portfolioID int64) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, http.MethodGet, portfolioPath(portfolioID)+"/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
