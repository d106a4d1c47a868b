// Package twitter is a thin client for the X API v2 endpoints the bot
// needs: who am I, my recent tweets, and posting a quote tweet.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dghubble/oauth1"
)

const defaultBaseURL = "https://api.twitter.com"

// ErrRateLimited marks HTTP 429 responses. The orchestrator records a
// cooldown and stops the run instead of hammering the API.
var ErrRateLimited = errors.New("twitter: rate limited")

// APIError is any non-429 error response from the platform.
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("twitter: %d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("twitter: unexpected status %d", e.Status)
}

// User is the authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// TweetRef points at a tweet this tweet retweets, replies to, or quotes.
type TweetRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type Tweet struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	CreatedAt        time.Time  `json:"created_at"`
	ReferencedTweets []TweetRef `json:"referenced_tweets"`
}

// IsQuote reports whether the tweet quotes another tweet.
func (t Tweet) IsQuote() bool {
	for _, ref := range t.ReferencedTweets {
		if ref.Type == "quoted" {
			return true
		}
	}
	return false
}

// QuotedID returns the ID of the quoted tweet, or "" when IsQuote is
// false.
func (t Tweet) QuotedID() string {
	for _, ref := range t.ReferencedTweets {
		if ref.Type == "quoted" {
			return ref.ID
		}
	}
	return ""
}

// Credentials are the OAuth 1.0a user-context keys the posting
// endpoints require.
type Credentials struct {
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
}

// Client calls the X API v2. The HTTP client and base URL are
// injectable so tests can point it at an httptest server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client signing requests with the user's OAuth
// 1.0a credentials.
func NewClient(creds Credentials) *Client {
	conf := oauth1.NewConfig(creds.APIKey, creds.APIKeySecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	return &Client{
		httpClient: conf.Client(oauth1.NoContext, token),
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithHTTP returns a client using the given transport and
// base URL, for tests.
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/2/users/me", nil, &out); err != nil {
		return User{}, fmt.Errorf("get authenticated user: %w", err)
	}
	if out.Data.ID == "" {
		return User{}, fmt.Errorf("get authenticated user: empty response")
	}
	log.Printf("[twitter] authenticated as @%s (ID: %s)", out.Data.Username, out.Data.ID)
	return out.Data, nil
}

// UserTweets returns up to max recent tweets of the user, newest
// first, with referenced-tweet info so quote tweets can be recognized.
func (c *Client) UserTweets(ctx context.Context, userID string, max int) ([]Tweet, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(max))
	q.Set("tweet.fields", "created_at,referenced_tweets")
	q.Set("expansions", "referenced_tweets.id")

	var out struct {
		Data []Tweet `json:"data"`
	}
	path := "/2/users/" + url.PathEscape(userID) + "/tweets?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get user tweets: %w", err)
	}
	log.Printf("[twitter] fetched %d tweets", len(out.Data))
	return out.Data, nil
}

// CreateQuoteTweet posts text as a quote of quotedID and returns the
// new tweet's ID.
func (c *Client) CreateQuoteTweet(ctx context.Context, text, quotedID string) (string, error) {
	body := map[string]string{
		"text":           text,
		"quote_tweet_id": quotedID,
	}
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", body, &out); err != nil {
		return "", fmt.Errorf("create quote tweet: %w", err)
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("create quote tweet: empty response")
	}
	return out.Data.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s %s: %w", method, path, ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Title = e.Title
			apiErr.Detail = e.Detail
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// TweetURL builds the public URL for a tweet, used in logs so the
// operator can jump straight to it.
func TweetURL(username, tweetID string) string {
	return "https://x.com/" + username + "/status/" + tweetID
}
