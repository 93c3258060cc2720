// Package backend speaks the content service's REST dialect: it resolves
// which origin to call per execution context, builds endpoint URLs and
// decodes the raw JSON payloads. Raw records here are immutable snapshots
// of a single response; the views package turns them into the normalized
// presentation graph.
package backend

// Author is a raw author/channel record as the backend serializes it.
type Author struct {
	Username         string `json:"username"`
	Title            string `json:"title,omitempty"`
	ChannelURL       string `json:"channel_url,omitempty"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	Description      string `json:"description,omitempty"`
	SubscribersCount int    `json:"subscribers_count,omitempty"`
	PostsCount       int    `json:"posts_count,omitempty"`
}

type Tag struct {
	Name  string `json:"name"`
	Lemma string `json:"lemma,omitempty"`
}

type PollOption struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	VoterCount int    `json:"voter_count"`
}

type Poll struct {
	ID                    string       `json:"id,omitempty"`
	Question              string       `json:"question"`
	IsAnonymous           bool         `json:"is_anonymous"`
	AllowsMultipleAnswers bool         `json:"allows_multiple_answers"`
	IsClosed              bool         `json:"is_closed"`
	TotalVoterCount       int          `json:"total_voter_count"`
	Options               []PollOption `json:"options"`
	UserSelection         []int        `json:"user_selection,omitempty"`
}

// Post is a raw backend post. ID is the durable identity; everything the
// client derives must be re-derivable from it plus the author and rubric
// fields.
type Post struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Poll          *Poll    `json:"poll,omitempty"`
	CreatedAt     string   `json:"created_at"`
	SourceURL     string   `json:"source_url,omitempty"`
	ChannelURL    string   `json:"channel_url,omitempty"`
	Rubric        string   `json:"rubric,omitempty"`
	RubricSlug    string   `json:"rubric_slug,omitempty"`
	RubricIconURL string   `json:"rubric_icon_url,omitempty"`
	CommentsCount int      `json:"comments_count,omitempty"`
	LikesCount    int      `json:"likes_count,omitempty"`
	Tags          []Tag    `json:"tags,omitempty"`
	Author        *Author  `json:"author,omitempty"`
}

type Rubric struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	IconURL     string `json:"icon_url,omitempty"`
	Description string `json:"description,omitempty"`
}

type Comment struct {
	ID         int     `json:"id"`
	PostID     int     `json:"post_id"`
	Content    string  `json:"content"`
	CreatedAt  string  `json:"created_at"`
	LikesCount int     `json:"likes_count,omitempty"`
	Author     *Author `json:"author,omitempty"`
}

// SearchResults mirrors the /api/search/ response body.
type SearchResults struct {
	Query   string   `json:"query"`
	Page    int      `json:"page"`
	Posts   []Post   `json:"posts"`
	Authors []Author `json:"authors"`
}
