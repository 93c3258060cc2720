// Package views builds the normalized presentation graph out of raw
// backend records. The graph is shaped for a federated-schema consumer:
// post, creator, community and counts entities with synthetic numeric
// identifiers derived deterministically from the source's natural keys.
//
// Nothing here performs I/O or fails: missing fields degrade to
// documented defaults because the adapter renders best-effort public
// content. Every call rebuilds the graph from scratch; output is never
// shared or mutated in place.
package views

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"comuna-reader/internal/backend"
)

// StableID hashes a natural-language key into a synthetic positive id.
// It reproduces the classic 32-bit polynomial string hash (h = h*31 + c
// over UTF-16 code units with signed wraparound), takes the absolute
// value and remaps 0 to 1, since 0 is reserved for "no id". Same string,
// same id, on every platform and run.
func StableID(input string) int {
	var hash int32
	for _, unit := range utf16.Encode([]rune(input)) {
		hash = hash*31 + int32(unit)
	}
	value := int64(hash)
	if value < 0 {
		value = -value
	}
	if value == 0 {
		value = 1
	}
	return int(value)
}

// Post is the normalized post entity. The fixed booleans (local,
// not deleted, not nsfw, ...) encode that backend content is locally
// authoritative rather than federated; no source field overrides them.
type Post struct {
	ID                int           `json:"id"`
	Name              string        `json:"name"`
	Body              string        `json:"body"`
	URL               string        `json:"url"`
	Tags              []backend.Tag `json:"tags"`
	Poll              *backend.Poll `json:"poll,omitempty"`
	Published         string        `json:"published"`
	Updated           string        `json:"updated"`
	NSFW              bool          `json:"nsfw"`
	Locked            bool          `json:"locked"`
	Removed           bool          `json:"removed"`
	Deleted           bool          `json:"deleted"`
	FeaturedLocal     bool          `json:"featured_local"`
	FeaturedCommunity bool          `json:"featured_community"`
	Local             bool          `json:"local"`
	CreatorID         int           `json:"creator_id"`
	CommunityID       int           `json:"community_id"`
	ApID              string        `json:"ap_id"`
	EmbedDescription  string        `json:"embed_description"`
	ThumbnailURL      *string       `json:"thumbnail_url"`
	LanguageID        int           `json:"language_id"`
}

type Creator struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	ActorID     string `json:"actor_id"`
	Local       bool   `json:"local"`
	Admin       bool   `json:"admin"`
	BotAccount  bool   `json:"bot_account"`
	Banned      bool   `json:"banned"`
	Deleted     bool   `json:"deleted"`
	Published   string `json:"published"`
}

type Community struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	ActorID   string `json:"actor_id"`
	Icon      string `json:"icon,omitempty"`
	Local     bool   `json:"local"`
	Deleted   bool   `json:"deleted"`
	Hidden    bool   `json:"hidden"`
	NSFW      bool   `json:"nsfw"`
	Published string `json:"published"`
	Removed   bool   `json:"removed"`
}

type Counts struct {
	ID                int    `json:"id"`
	PostID            int    `json:"post_id"`
	Comments          int    `json:"comments"`
	Score             int    `json:"score"`
	Upvotes           int    `json:"upvotes"`
	Downvotes         int    `json:"downvotes"`
	Published         string `json:"published"`
	NewestCommentTime string `json:"newest_comment_time"`
}

// PostView is the full graph handed to presentation for one post.
// Community is nil when the post has no rubric.
type PostView struct {
	Post      Post       `json:"post"`
	Creator   Creator    `json:"creator"`
	Community *Community `json:"community,omitempty"`
	Counts    Counts     `json:"counts"`

	CreatorIsAdmin             bool   `json:"creator_is_admin"`
	CreatorIsModerator         bool   `json:"creator_is_moderator"`
	CreatorBannedFromCommunity bool   `json:"creator_banned_from_community"`
	Subscribed                 string `json:"subscribed"`
	Saved                      bool   `json:"saved"`
	Read                       bool   `json:"read"`
	Hidden                     bool   `json:"hidden"`
	MyVote                     int    `json:"my_vote"`
}

// ToPostView normalizes one raw backend post into the presentation graph.
// fallbackAuthor covers list responses where the author rides on the
// envelope instead of each post.
func ToPostView(post backend.Post, fallbackAuthor *backend.Author) PostView {
	author := post.Author
	if author == nil {
		author = fallbackAuthor
	}

	authorName := "author"
	authorTitle := ""
	avatarURL := ""
	channelURL := ""
	if author != nil {
		if author.Username != "" {
			authorName = author.Username
		}
		authorTitle = author.Title
		avatarURL = author.AvatarURL
		channelURL = author.ChannelURL
	}
	if authorTitle == "" {
		authorTitle = authorName
	}

	creatorID := StableID(authorName)
	communityKey := post.RubricSlug
	if communityKey == "" {
		communityKey = authorName + "-rubric"
	}
	communityID := StableID(communityKey)

	tags := post.Tags
	if tags == nil {
		tags = []backend.Tag{}
	}

	apID := post.SourceURL
	if apID == "" {
		apID = "https://post.local/" + strconv.Itoa(post.ID)
	}

	actorID := channelURL
	if actorID == "" {
		actorID = "https://t.me/" + authorName
	}

	view := PostView{
		Post: Post{
			ID:          post.ID,
			Name:        post.Title,
			Body:        post.Content,
			URL:         "",
			Tags:        tags,
			Poll:        post.Poll,
			Published:   post.CreatedAt,
			Updated:     post.CreatedAt,
			Local:       true,
			CreatorID:   creatorID,
			CommunityID: communityID,
			ApID:        apID,
		},
		Creator: Creator{
			ID:          creatorID,
			Name:        authorName,
			DisplayName: authorTitle,
			Avatar:      avatarURL,
			ActorID:     actorID,
			Local:       true,
			Published:   post.CreatedAt,
		},
		Counts: Counts{
			ID:                post.ID,
			PostID:            post.ID,
			Comments:          post.CommentsCount,
			Score:             post.LikesCount,
			Published:         post.CreatedAt,
			NewestCommentTime: post.CreatedAt,
		},
		Subscribed: "NotSubscribed",
	}

	if post.Rubric != "" {
		name := post.RubricSlug
		if name == "" {
			name = kebab(post.Rubric)
		}
		slugOrName := post.RubricSlug
		if slugOrName == "" {
			slugOrName = post.Rubric
		}
		view.Community = &Community{
			ID:        communityID,
			Name:      name,
			Title:     post.Rubric,
			ActorID:   "https://rubrics.local/" + slugOrName,
			Icon:      post.RubricIconURL,
			Local:     true,
			Published: post.CreatedAt,
		}
	}

	return view
}

// ToPostViews adapts a whole list, sharing one fallback author.
func ToPostViews(posts []backend.Post, fallbackAuthor *backend.Author) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, ToPostView(post, fallbackAuthor))
	}
	return views
}

// kebab lowercases a title and collapses whitespace runs into dashes.
func kebab(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}
