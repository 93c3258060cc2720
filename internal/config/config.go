// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// BackendConfig holds the origins used to reach the content backend.
// The internal URL is a private-network address for server-rendered
// requests; browsers always go through the public URL.
type BackendConfig struct {
	PublicURL   string
	InternalURL string
}

// FrontendConfig carries the PUBLIC_* toggles that seed default user
// settings. Boolean fields are nil when the variable is unset so the
// settings layer can fall back to its own hard-coded defaults.
type FrontendConfig struct {
	DefaultFeed     string
	DefaultFeedSort string
	View            string

	ExpandableImages       *bool
	ShowInstancesUser      *bool
	ShowInstancesCommunity *bool
	ShowInstancesComments  *bool
	HideDeleted            *bool
	HideRemoved            *bool
	ExpandSidebar          *bool
	ExpandCommunities      *bool
	ExpandFavorites        *bool
	ExpandModerates        *bool
	DisplayNames           *bool
	ModlogCardView         *bool
	DebugInfo              *bool
	ExpandImages           *bool
	LeftAlign              *bool
	RemoveCredit           *bool
	LimitLayoutWidth       *bool
	MarkPostsAsRead        *bool
	DeduplicateEmbed       *bool
}

// Config holds the complete application configuration
type Config struct {
	Backend    *BackendConfig
	Frontend   *FrontendConfig
	SSREnabled bool
	Debug      bool
}

// LoadConfig loads configuration from environment variables and applies defaults.
// Missing variables never fail the load; every consumer degrades to a
// best-effort default instead.
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",          // Current directory
		"../../.env",    // Project root when running from cmd/reader
		"../../../.env", // Even higher directory
		filepath.Join(os.Getenv("GOPATH"), "src/comuna-reader/.env"), // GOPATH location
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		// Silent failure if no .env exists, which is fine
		_ = godotenv.Load()
	}

	config := &Config{
		Backend: &BackendConfig{
			PublicURL:   os.Getenv("PUBLIC_BACKEND_URL"),
			InternalURL: os.Getenv("PUBLIC_INTERNAL_BACKEND_URL"),
		},
		Frontend: &FrontendConfig{
			DefaultFeed:     os.Getenv("PUBLIC_DEFAULT_FEED"),
			DefaultFeedSort: os.Getenv("PUBLIC_DEFAULT_FEED_SORT"),
			View:            os.Getenv("PUBLIC_VIEW"),

			ExpandableImages:       ToBool(os.Getenv("PUBLIC_EXPANDABLE_IMAGES")),
			ShowInstancesUser:      ToBool(os.Getenv("PUBLIC_SHOW_INSTANCES_USER")),
			ShowInstancesCommunity: ToBool(os.Getenv("PUBLIC_SHOW_INSTANCES_COMMUNITY")),
			ShowInstancesComments:  ToBool(os.Getenv("PUBLIC_SHOW_INSTANCES_COMMENTS")),
			HideDeleted:            ToBool(os.Getenv("PUBLIC_HIDE_DELETED")),
			HideRemoved:            ToBool(os.Getenv("PUBLIC_HIDE_REMOVED")),
			ExpandSidebar:          ToBool(os.Getenv("PUBLIC_EXPAND_SIDEBAR")),
			ExpandCommunities:      ToBool(os.Getenv("PUBLIC_EXPAND_COMMUNITIES")),
			ExpandFavorites:        ToBool(os.Getenv("PUBLIC_EXPAND_FAVORITES")),
			ExpandModerates:        ToBool(os.Getenv("PUBLIC_EXPAND_MODERATES")),
			DisplayNames:           ToBool(os.Getenv("PUBLIC_DISPLAY_NAMES")),
			ModlogCardView:         ToBool(os.Getenv("PUBLIC_MODLOG_CARD_VIEW")),
			DebugInfo:              ToBool(os.Getenv("PUBLIC_DEBUG_INFO")),
			ExpandImages:           ToBool(os.Getenv("PUBLIC_EXPAND_IMAGES")),
			LeftAlign:              ToBool(os.Getenv("PUBLIC_LEFT_ALIGN")),
			RemoveCredit:           ToBool(os.Getenv("PUBLIC_REMOVE_CREDIT")),
			LimitLayoutWidth:       ToBool(os.Getenv("PUBLIC_LIMIT_LAYOUT_WIDTH")),
			MarkPostsAsRead:        ToBool(os.Getenv("PUBLIC_MARK_POSTS_AS_READ")),
			DeduplicateEmbed:       ToBool(os.Getenv("PUBLIC_DEDUPLICATE_EMBED")),
		},
		SSREnabled: strings.EqualFold(os.Getenv("PUBLIC_SSR_ENABLED"), "true"),
		Debug:      os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// ToBool returns a proper boolean or nil. Used to read boolean env var
// strings while letting callers apply their own default for unset values.
func ToBool(str string) *bool {
	if str == "" {
		return nil
	}
	b := strings.EqualFold(str, "true")
	return &b
}

// Helper function to get environment variable with default fallback
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
