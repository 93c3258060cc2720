package backend

import (
	"net/url"
	"strconv"
	"strings"

	"comuna-reader/internal/config"
)

// ExecutionContext says where a request originates. Server-rendered code
// may reach the backend over a private network address; browser code must
// use a publicly routable one.
type ExecutionContext int

const (
	ContextServer ExecutionContext = iota
	ContextClient
)

const defaultClientOrigin = "http://localhost:8000"

// Resolver picks the backend origin for an execution context.
// It never fails: absent configuration degrades to best-effort defaults.
type Resolver struct {
	Public   string
	Internal string
}

func NewResolver(cfg *config.BackendConfig) Resolver {
	if cfg == nil {
		return Resolver{}
	}
	return Resolver{Public: cfg.PublicURL, Internal: cfg.InternalURL}
}

// BaseURL returns the origin to call, trailing slash stripped.
func (r Resolver) BaseURL(ctx ExecutionContext) string {
	if ctx == ContextServer {
		base := r.Internal
		if base == "" {
			base = r.Public
		}
		return strings.TrimSuffix(base, "/")
	}
	base := r.Public
	if base == "" {
		base = defaultClientOrigin
	}
	return strings.TrimSuffix(base, "/")
}

// Endpoints builds concrete URLs against one resolved origin. All methods
// are pure; user-controlled path segments are percent-encoded and query
// parameters equal to their implicit default are omitted so URLs stay
// canonical and cache-friendly.
type Endpoints struct {
	base string
}

func NewEndpoints(base string) Endpoints {
	return Endpoints{base: strings.TrimSuffix(base, "/")}
}

func ResolveEndpoints(r Resolver, ctx ExecutionContext) Endpoints {
	return Endpoints{base: r.BaseURL(ctx)}
}

func (e Endpoints) Base() string { return e.base }

func (e Endpoints) AuthorPostsURL(username string) string {
	return e.base + "/api/authors/" + url.PathEscape(username) + "/posts/"
}

func (e Endpoints) TopAuthorsMonthURL(limit int) string {
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	return e.base + "/api/authors/top-month/?" + params.Encode()
}

// RubricsOptions enumerates the recognized options for RubricsURL.
type RubricsOptions struct {
	IncludeHidden bool
}

func (e Endpoints) RubricsURL(opts RubricsOptions) string {
	base := e.base + "/api/rubrics/"
	if !opts.IncludeHidden {
		return base
	}
	params := url.Values{"include_hidden": {"1"}}
	return base + "?" + params.Encode()
}

func (e Endpoints) RubricPostsURL(slug string) string {
	return e.base + "/api/rubrics/" + url.PathEscape(slug) + "/posts/"
}

func (e Endpoints) TagsURL() string {
	return e.base + "/api/tags/"
}

func (e Endpoints) TagPostsURL(tag string) string {
	return e.base + "/api/tags/" + url.PathEscape(tag) + "/posts/"
}

func (e Endpoints) PostURL(id int) string {
	return e.base + "/api/posts/" + strconv.Itoa(id) + "/"
}

func (e Endpoints) PostCommentsURL(id int) string {
	return e.base + "/api/posts/" + strconv.Itoa(id) + "/comments/"
}

func (e Endpoints) PostLikeURL(id int) string {
	return e.base + "/api/posts/" + strconv.Itoa(id) + "/like/"
}

func (e Endpoints) PostReadURL(id int) string {
	return e.base + "/api/posts/" + strconv.Itoa(id) + "/read/"
}

func (e Endpoints) PostPollVoteURL(id int) string {
	return e.base + "/api/posts/" + strconv.Itoa(id) + "/poll-vote/"
}

func (e Endpoints) CommentURL(id int) string {
	return e.base + "/api/comments/" + strconv.Itoa(id) + "/"
}

func (e Endpoints) CommentLikeURL(id int) string {
	return e.base + "/api/comments/" + strconv.Itoa(id) + "/like/"
}

func (e Endpoints) RecentCommentsURL(limit int) string {
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	return e.base + "/api/comments/recent/?" + params.Encode()
}

// FeedOptions enumerates the recognized options for the home and fresh
// feeds. OnlyRead takes precedence over HideRead.
type FeedOptions struct {
	HideRead bool
	OnlyRead bool
}

func feedQuery(opts FeedOptions) string {
	params := url.Values{}
	if opts.OnlyRead {
		params.Set("only_read", "1")
	} else if opts.HideRead {
		params.Set("hide_read", "1")
	}
	if query := params.Encode(); query != "" {
		return "?" + query
	}
	return ""
}

func (e Endpoints) HomeFeedURL(opts FeedOptions) string {
	return e.base + "/api/home/" + feedQuery(opts)
}

func (e Endpoints) FreshFeedURL(opts FeedOptions) string {
	return e.base + "/api/home/fresh/" + feedQuery(opts)
}

// MyFeedURL builds the personalized feed URL. hideNegative defaults to
// true on the backend, so the parameter only appears when it is disabled.
func (e Endpoints) MyFeedURL(rubrics, authors []string, hideNegative, hideRead, onlyRead bool) string {
	params := url.Values{}
	if len(rubrics) > 0 {
		params.Set("rubrics", strings.Join(rubrics, ","))
	}
	if len(authors) > 0 {
		params.Set("authors", strings.Join(authors, ","))
	}
	if !hideNegative {
		params.Set("hide_negative", "0")
	}
	if onlyRead {
		params.Set("only_read", "1")
	} else if hideRead {
		params.Set("hide_read", "1")
	}
	base := e.base + "/api/home/my/"
	if query := params.Encode(); query != "" {
		return base + "?" + query
	}
	return base
}

// SearchURL builds the search URL. The backend requires every parameter,
// so defaults (page 1, limit 20, type All, sort New) are filled in rather
// than omitted.
func (e Endpoints) SearchURL(query string, page, limit int, searchType, sort string) string {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if searchType == "" {
		searchType = "All"
	}
	if sort == "" {
		sort = "New"
	}
	params := url.Values{
		"q":     {query},
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
		"type":  {searchType},
		"sort":  {sort},
	}
	return e.base + "/api/search/?" + params.Encode()
}

// Auth endpoints.

func (e Endpoints) MeURL() string {
	return e.base + "/api/auth/me/"
}

func (e Endpoints) LoginURL() string {
	return e.base + "/api/auth/login/"
}

func (e Endpoints) RegisterURL() string {
	return e.base + "/api/auth/register/"
}

func (e Endpoints) TelegramAuthURL() string {
	return e.base + "/api/auth/telegram/"
}

func (e Endpoints) VKAuthURL() string {
	return e.base + "/api/auth/vk/"
}

func (e Endpoints) VerificationCodeURL() string {
	return e.base + "/api/auth/verification-code/"
}

func (e Endpoints) UserPostsURL(limit, offset int) string {
	params := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	return e.base + "/api/auth/posts/?" + params.Encode()
}

func (e Endpoints) UserPostsCollectionURL() string {
	return e.base + "/api/auth/posts/"
}

func (e Endpoints) UserPostURL(id int) string {
	return e.base + "/api/auth/posts/" + strconv.Itoa(id) + "/"
}

func (e Endpoints) UploadsURL() string {
	return e.base + "/api/auth/uploads/"
}

// PostPath derives the human-readable site path for a post:
// "/post/{id}-{slug}", or "/post/{id}" when the title produces no slug.
func PostPath(id int, title string) string {
	slug := SlugifyTitle(title)
	if slug == "" {
		return "/post/" + strconv.Itoa(id)
	}
	return "/post/" + strconv.Itoa(id) + "-" + slug
}
