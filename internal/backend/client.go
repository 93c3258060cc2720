package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"comuna-reader/internal/utils"
)

// Client is the read-path HTTP client for public backend content.
// Transport failures and non-2xx responses come back as errors; the
// route-loading layer decides whether to substitute empty results.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	logger    *slog.Logger
	metrics   *utils.MetricsCollector
}

func NewClient(endpoints Endpoints, logger *slog.Logger, metrics *utils.MetricsCollector) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoints: endpoints,
		logger:    logger,
		metrics:   metrics,
	}
}

func (c *Client) Endpoints() Endpoints { return c.endpoints }

func (c *Client) getJSON(ctx context.Context, operation, rawURL string, out any) error {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.AddOperationLatency(operation, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrInvalidInput, "invalid request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.IncrementErrors()
		}
		c.logger.Warn("backend request failed", "op", operation, "url", rawURL, "err", err)
		return utils.NewAppError(utils.ErrTransport, "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return utils.NewAppError(utils.ErrNotFound, fmt.Sprintf("%s not found", operation), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.metrics != nil {
			c.metrics.IncrementErrors()
		}
		return utils.NewBadResponseError(resp.StatusCode, "backend error")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.NewAppError(utils.ErrBadResponse, "malformed backend response", err)
	}
	return nil
}

type postListResponse struct {
	Posts []Post `json:"posts"`
}

func (c *Client) HomeFeed(ctx context.Context, opts FeedOptions) ([]Post, error) {
	var body postListResponse
	if err := c.getJSON(ctx, "home_feed", c.endpoints.HomeFeedURL(opts), &body); err != nil {
		return nil, err
	}
	return body.Posts, nil
}

func (c *Client) FreshFeed(ctx context.Context, opts FeedOptions) ([]Post, error) {
	var body postListResponse
	if err := c.getJSON(ctx, "fresh_feed", c.endpoints.FreshFeedURL(opts), &body); err != nil {
		return nil, err
	}
	return body.Posts, nil
}

func (c *Client) MyFeed(ctx context.Context, rubrics, authors []string, hideNegative, hideRead, onlyRead bool) ([]Post, error) {
	var body postListResponse
	url := c.endpoints.MyFeedURL(rubrics, authors, hideNegative, hideRead, onlyRead)
	if err := c.getJSON(ctx, "my_feed", url, &body); err != nil {
		return nil, err
	}
	return body.Posts, nil
}

type authorPostsResponse struct {
	Author *Author `json:"author"`
	Posts  []Post  `json:"posts"`
}

// AuthorPosts returns the author profile snapshot together with the
// author's posts.
func (c *Client) AuthorPosts(ctx context.Context, username string) (*Author, []Post, error) {
	var body authorPostsResponse
	if err := c.getJSON(ctx, "author_posts", c.endpoints.AuthorPostsURL(username), &body); err != nil {
		return nil, nil, err
	}
	return body.Author, body.Posts, nil
}

type authorListResponse struct {
	Authors []Author `json:"authors"`
}

func (c *Client) TopAuthorsMonth(ctx context.Context, limit int) ([]Author, error) {
	var body authorListResponse
	if err := c.getJSON(ctx, "top_authors_month", c.endpoints.TopAuthorsMonthURL(limit), &body); err != nil {
		return nil, err
	}
	return body.Authors, nil
}

type rubricListResponse struct {
	Rubrics []Rubric `json:"rubrics"`
}

func (c *Client) Rubrics(ctx context.Context, opts RubricsOptions) ([]Rubric, error) {
	var body rubricListResponse
	if err := c.getJSON(ctx, "rubrics", c.endpoints.RubricsURL(opts), &body); err != nil {
		return nil, err
	}
	return body.Rubrics, nil
}

func (c *Client) RubricPosts(ctx context.Context, slug string) ([]Post, error) {
	var body postListResponse
	if err := c.getJSON(ctx, "rubric_posts", c.endpoints.RubricPostsURL(slug), &body); err != nil {
		return nil, err
	}
	return body.Posts, nil
}

type tagListResponse struct {
	Tags []Tag `json:"tags"`
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var body tagListResponse
	if err := c.getJSON(ctx, "tags", c.endpoints.TagsURL(), &body); err != nil {
		return nil, err
	}
	return body.Tags, nil
}

func (c *Client) TagPosts(ctx context.Context, tag string) ([]Post, error) {
	var body postListResponse
	if err := c.getJSON(ctx, "tag_posts", c.endpoints.TagPostsURL(tag), &body); err != nil {
		return nil, err
	}
	return body.Posts, nil
}

type postDetailResponse struct {
	Post *Post `json:"post"`
}

func (c *Client) PostDetail(ctx context.Context, id int) (*Post, error) {
	var body postDetailResponse
	if err := c.getJSON(ctx, "post_detail", c.endpoints.PostURL(id), &body); err != nil {
		return nil, err
	}
	if body.Post == nil {
		return nil, utils.NewAppError(utils.ErrNotFound, "post not found", nil)
	}
	return body.Post, nil
}

type commentListResponse struct {
	Comments []Comment `json:"comments"`
}

func (c *Client) PostComments(ctx context.Context, id int) ([]Comment, error) {
	var body commentListResponse
	if err := c.getJSON(ctx, "post_comments", c.endpoints.PostCommentsURL(id), &body); err != nil {
		return nil, err
	}
	return body.Comments, nil
}

func (c *Client) RecentComments(ctx context.Context, limit int) ([]Comment, error) {
	var body commentListResponse
	if err := c.getJSON(ctx, "recent_comments", c.endpoints.RecentCommentsURL(limit), &body); err != nil {
		return nil, err
	}
	return body.Comments, nil
}

func (c *Client) Search(ctx context.Context, query string, page, limit int, searchType, sort string) (*SearchResults, error) {
	var body SearchResults
	url := c.endpoints.SearchURL(query, page, limit, searchType, sort)
	if err := c.getJSON(ctx, "search", url, &body); err != nil {
		return nil, err
	}
	return &body, nil
}
