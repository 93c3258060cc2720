// Package settings defines the versioned user-preference record, its
// environment-seeded defaults and the forward migration applied to
// persisted copies. The record's JSON keys match the payload historical
// clients persisted, so existing blobs keep loading.
package settings

import "comuna-reader/internal/config"

// CurrentVersion is stamped into every loaded record; a persisted
// version tag never survives a load.
const CurrentVersion = 3

type View = string

const (
	ViewCard    View = "card"
	ViewCozy    View = "cozy"
	ViewList    View = "list"
	ViewCompact View = "compact"
)

type Preset struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

type ShowInstances struct {
	User      bool `json:"user"`
	Community bool `json:"community"`
	Comments  bool `json:"comments"`
}

type DefaultSort struct {
	Sort     string `json:"sort"`
	Feed     string `json:"feed"`
	Comments string `json:"comments"`
}

type HidePosts struct {
	Deleted bool `json:"deleted"`
	Removed bool `json:"removed"`
}

type Expand struct {
	Communities bool `json:"communities"`
	Moderates   bool `json:"moderates"`
	Favorites   bool `json:"favorites"`
	About       bool `json:"about"`
	Stats       bool `json:"stats"`
	Team        bool `json:"team"`
	Accounts    bool `json:"accounts"`
}

type Moderation struct {
	Presets []Preset `json:"presets"`
}

type Embeds struct {
	ClickToView bool   `json:"clickToView"`
	YouTube     string `json:"youtube"`
	Invidious   string `json:"invidious,omitempty"`
	Piped       string `json:"piped,omitempty"`
}

type Pin struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Dock struct {
	NoGap         *bool  `json:"noGap"`
	Top           *bool  `json:"top"`
	Pins          []Pin  `json:"pins"`
	PaletteHotkey string `json:"paletteHotkey"`
}

type PostPrefs struct {
	DeduplicateEmbed bool `json:"deduplicateEmbed"`
	ShowHidden       bool `json:"showHidden"`
	NoVirtualize     bool `json:"noVirtualize"`
	ReverseActions   bool `json:"reverseActions"`
}

// Settings is the single versioned preferences record.
type Settings struct {
	SettingsVer      int           `json:"settingsVer"`
	ExpandableImages bool          `json:"expandableImages"`
	MarkReadPosts    bool          `json:"markReadPosts"` // fades read posts
	ShowInstances    ShowInstances `json:"showInstances"`

	View View `json:"view"`

	DefaultSort   DefaultSort `json:"defaultSort"`
	HidePosts     HidePosts   `json:"hidePosts"`
	ExpandSidebar bool        `json:"expandSidebar"`
	Expand        Expand      `json:"expand"`
	DisplayNames  bool        `json:"displayNames"`
	NsfwBlur      bool        `json:"nsfwBlur"`
	Moderation    Moderation  `json:"moderation"`

	RandomPlaceholders bool  `json:"randomPlaceholders"`
	ModlogCardView     *bool `json:"modlogCardView"`
	DebugInfo          bool  `json:"debugInfo"`
	ExpandImages       bool  `json:"expandImages"`

	Font       string `json:"font"`
	LeftAlign  bool   `json:"leftAlign"`
	HideCredit bool   `json:"hidePhoton"`

	NewWidth        bool `json:"newWidth"`
	MarkPostsAsRead bool `json:"markPostsAsRead"`

	OpenLinksInNewTab     bool `json:"openLinksInNewTab"`
	CrosspostOriginalLink bool `json:"crosspostOriginalLink"`

	Embeds Embeds    `json:"embeds"`
	Dock   Dock      `json:"dock"`
	Posts  PostPrefs `json:"posts"`

	InfiniteScroll bool              `json:"infiniteScroll"`
	Language       string            `json:"language"`
	MyFeedRubrics  []string          `json:"myFeedRubrics"`
	UseRtl         bool              `json:"useRtl"`
	Translator     string            `json:"translator,omitempty"`
	ParseTags      bool              `json:"parseTags"`
	TagRules       map[string]string `json:"tagRules"`
	LogoColorMonth *int              `json:"logoColorMonth"`
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

func stringOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// Defaults builds the hard-coded defaults, overridden by the PUBLIC_*
// environment toggles where they are set.
func Defaults(cfg *config.FrontendConfig) Settings {
	if cfg == nil {
		cfg = &config.FrontendConfig{}
	}
	return Settings{
		SettingsVer:      CurrentVersion,
		ExpandableImages: boolOr(cfg.ExpandableImages, true),
		MarkReadPosts:    false,
		ShowInstances: ShowInstances{
			User:      boolOr(cfg.ShowInstancesUser, true),
			Community: boolOr(cfg.ShowInstancesCommunity, true),
			Comments:  boolOr(cfg.ShowInstancesComments, true),
		},
		DefaultSort: DefaultSort{
			Sort:     stringOr(cfg.DefaultFeedSort, "TopWeek"),
			Feed:     stringOr(cfg.DefaultFeed, "All"),
			Comments: "Hot",
		},
		HidePosts: HidePosts{
			Deleted: boolOr(cfg.HideDeleted, true),
			Removed: boolOr(cfg.HideRemoved, true),
		},
		ExpandSidebar: boolOr(cfg.ExpandSidebar, true),
		Expand: Expand{
			Communities: boolOr(cfg.ExpandCommunities, true),
			Favorites:   boolOr(cfg.ExpandFavorites, true),
			Moderates:   boolOr(cfg.ExpandModerates, true),
			About:       false,
			Stats:       false,
			Team:        false,
			Accounts:    true,
		},
		DisplayNames: boolOr(cfg.DisplayNames, true),
		NsfwBlur:     false,
		Moderation: Moderation{
			Presets: []Preset{
				{
					Title:   "Шаблон 1",
					Content: `Ваш пост *"{{post}}"* было удалено по причине {{reason}}.`,
				},
			},
		},
		RandomPlaceholders: false,
		ModlogCardView:     cfg.ModlogCardView,
		DebugInfo:          boolOr(cfg.DebugInfo, false),
		ExpandImages:       boolOr(cfg.ExpandImages, true),
		View:               stringOr(cfg.View, ViewCozy),
		Font:               "roboto",
		LeftAlign:          boolOr(cfg.LeftAlign, false),
		HideCredit:         boolOr(cfg.RemoveCredit, false),
		NewWidth:           boolOr(cfg.LimitLayoutWidth, true),
		MarkPostsAsRead:    boolOr(cfg.MarkPostsAsRead, true),
		OpenLinksInNewTab:  false,
		CrosspostOriginalLink: false,
		Embeds: Embeds{
			ClickToView: true,
			YouTube:     "youtube",
		},
		Dock: Dock{
			Pins:          []Pin{},
			PaletteHotkey: "/",
		},
		Posts: PostPrefs{
			DeduplicateEmbed: boolOr(cfg.DeduplicateEmbed, true),
			ShowHidden:       false,
			NoVirtualize:     false,
			ReverseActions:   false,
		},
		InfiniteScroll: true,
		Language:       "ru",
		MyFeedRubrics:  []string{},
		UseRtl:         false,
		ParseTags:      true,
		TagRules: map[string]string{
			"cw":   "blur",
			"nsfl": "blur",
			"nsfw": "blur",
		},
		LogoColorMonth: nil,
	}
}
