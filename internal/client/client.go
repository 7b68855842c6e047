// Package client is the Go client for the auction site HTTP API, used by
// the command-line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to one auction site server.
type Client struct {
	base  string
	http  *http.Client
	token string
}

// New returns a client for the server at base, e.g. "http://localhost:8080".
func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs the bearer token returned by Login for later calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Site mirrors the server's site representation.
type Site struct {
	ID                       int64   `json:"id"`
	Name                     string  `json:"name"`
	Timezone                 int     `json:"timezone"`
	SessionExpirationSeconds int     `json:"session_expiration_seconds"`
	MinimumBidIncrement      float64 `json:"minimum_bid_increment"`
}

// User mirrors the server's user representation.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Auction mirrors the server's auction representation.
type Auction struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	Description string    `json:"description"`
	EndsOn      time.Time `json:"ends_on"`
	Price       float64   `json:"price"`
	WinnerID    *int64    `json:"winner_id,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("server returned %s", resp.Status)
		}
		return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func sitePath(site, suffix string) string {
	return "/api/sites/" + url.PathEscape(site) + suffix
}

// CreateSite registers a new marketplace.
func (c *Client) CreateSite(ctx context.Context, name string, timezone, sessionExpirationSeconds int, minimumBidIncrement float64) (*Site, error) {
	var site Site
	err := c.do(ctx, http.MethodPost, "/api/sites", map[string]any{
		"name":                       name,
		"timezone":                   timezone,
		"session_expiration_seconds": sessionExpirationSeconds,
		"minimum_bid_increment":      minimumBidIncrement,
	}, &site)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// ListSites returns all sites.
func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	var sites []Site
	if err := c.do(ctx, http.MethodGet, "/api/sites", nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// Register creates a user account on the site.
func (c *Client) Register(ctx context.Context, site, username, password string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, sitePath(site, "/users"), map[string]string{
		"username": username,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, site, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, sitePath(site, "/login"), map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

// Logout ends the authenticated session.
func (c *Client) Logout(ctx context.Context, site string) error {
	return c.do(ctx, http.MethodPost, sitePath(site, "/logout"), nil, nil)
}

// CreateAuction lists a new auction on behalf of the logged-in user.
func (c *Client) CreateAuction(ctx context.Context, site, description string, endsOn time.Time, startingPrice float64) (*Auction, error) {
	var auction Auction
	err := c.do(ctx, http.MethodPost, sitePath(site, "/auctions"), map[string]any{
		"description":    description,
		"ends_on":        endsOn,
		"starting_price": startingPrice,
	}, &auction)
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// ListAuctions returns the site's auctions, only running ones if onlyActive.
func (c *Client) ListAuctions(ctx context.Context, site string, onlyActive bool) ([]Auction, error) {
	path := sitePath(site, "/auctions")
	if onlyActive {
		path += "?active=true"
	}
	var auctions []Auction
	if err := c.do(ctx, http.MethodGet, path, nil, &auctions); err != nil {
		return nil, err
	}
	return auctions, nil
}

// PlaceBid offers the amount on the auction and reports whether it was
// accepted.
func (c *Client) PlaceBid(ctx context.Context, site string, auctionID int64, offer float64) (string, error) {
	var out struct {
		Outcome string `json:"outcome"`
	}
	path := sitePath(site, fmt.Sprintf("/auctions/%d/bids", auctionID))
	if err := c.do(ctx, http.MethodPost, path, map[string]float64{"offer": offer}, &out); err != nil {
		return "", err
	}
	return out.Outcome, nil
}

// CurrentPrice returns the auction's visible price.
func (c *Client) CurrentPrice(ctx context.Context, site string, auctionID int64) (float64, error) {
	var out struct {
		Price float64 `json:"price"`
	}
	path := sitePath(site, fmt.Sprintf("/auctions/%d/price", auctionID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Price, nil
}

// CurrentWinner returns the auction's winner, or nil while nobody bid.
func (c *Client) CurrentWinner(ctx context.Context, site string, auctionID int64) (*User, error) {
	var out struct {
		Winner *User `json:"winner"`
	}
	path := sitePath(site, fmt.Sprintf("/auctions/%d/winner", auctionID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Winner, nil
}
