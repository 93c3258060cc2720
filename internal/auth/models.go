// Package auth implements the session operations against the backend's
// /api/auth/ endpoints: credential and provider logins, profile refresh
// and the authenticated author workflow. It holds no state of its own;
// the session store owns the token and decides what to persist.
package auth

// SiteAuthorLink ties a site account to an author channel it manages.
type SiteAuthorLink struct {
	Username         string `json:"username"`
	Title            string `json:"title,omitempty"`
	ChannelURL       string `json:"channel_url,omitempty"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	Rubric           string `json:"rubric,omitempty"`
	RubricSlug       string `json:"rubric_slug,omitempty"`
	AutoPublish      bool   `json:"auto_publish,omitempty"`
	PublishDelayDays int    `json:"publish_delay_days,omitempty"`
	InviteURL        string `json:"invite_url,omitempty"`
}

// SiteUser is the volatile profile cached next to the token. It is
// refreshed from the token and discarded on any authentication failure.
type SiteUser struct {
	ID        int              `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email,omitempty"`
	AvatarURL string           `json:"avatar_url,omitempty"`
	IsStaff   bool             `json:"is_staff,omitempty"`
	IsAuthor  bool             `json:"is_author"`
	Authors   []SiteAuthorLink `json:"authors"`
}

// SiteUserPost is a post as seen through the authenticated author
// workflow, including pending/scheduled state the public feed hides.
type SiteUserPost struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
	IsPending     bool     `json:"is_pending,omitempty"`
	PublishAt     string   `json:"publish_at,omitempty"`
	Rubric        string   `json:"rubric,omitempty"`
	RubricSlug    string   `json:"rubric_slug,omitempty"`
	RubricIconURL string   `json:"rubric_icon_url,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Author        struct {
		Username  string `json:"username"`
		Title     string `json:"title,omitempty"`
		AvatarURL string `json:"avatar_url,omitempty"`
	} `json:"author"`
}

// TelegramAuthPayload is the widget callback payload forwarded verbatim.
type TelegramAuthPayload struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

// VKAuthPayload is the VK ID callback payload forwarded verbatim.
type VKAuthPayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	IDToken     string `json:"id_token,omitempty"`
}

// RegisterPayload carries a new account's credentials.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// CreatePostPayload creates a post through the author workflow.
type CreatePostPayload struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	AuthorUsername string   `json:"author_username,omitempty"`
	RubricSlug     string   `json:"rubric_slug,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// UpdatePostPayload patches a post; empty fields are left untouched.
type UpdatePostPayload struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}
