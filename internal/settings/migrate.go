package settings

import "encoding/json"

// persistedModeration accepts both the current presets list and the
// legacy single-string preset.
type persistedModeration struct {
	Presets             []Preset `json:"presets"`
	RemovalReasonPreset *string  `json:"removalReasonPreset"`
}

// Persisted is the lenient shape a stored settings blob decodes into.
// The embedded Settings carries every current field; shadowed fields
// hold the shapes that have changed across versions.
type Persisted struct {
	Settings
	Moderation persistedModeration `json:"moderation"`
}

type migration struct {
	name  string
	apply func(p *Persisted, defaults Settings)
}

// The forward-migration chain. Steps are triggered by the deprecated
// shape itself rather than the persisted version tag, which makes each
// step idempotent and the chain safe to rerun on every load.
var migrations = []migration{
	{
		name: "moderation-presets",
		apply: func(p *Persisted, _ Settings) {
			if p.Moderation.RemovalReasonPreset != nil {
				p.Moderation.Presets = []Preset{
					{
						Title:   "Preset 1",
						Content: *p.Moderation.RemovalReasonPreset,
					},
				}
				p.Moderation.RemovalReasonPreset = nil
			}
		},
	},
	{
		name: "my-feed-rubrics",
		apply: func(p *Persisted, _ Settings) {
			if p.MyFeedRubrics == nil {
				p.MyFeedRubrics = []string{}
			}
		},
	},
}

// forcedDefaults is the fixed allow-list of fields reset to current
// defaults on every load, regardless of what was persisted. Deliberate
// policy: these settings are non-persistent across versions even though
// the store is otherwise additive.
func forcedDefaults(p *Persisted, defaults Settings) {
	p.Language = defaults.Language
	p.Dock = Dock{
		NoGap:         defaults.Dock.NoGap,
		Top:           defaults.Dock.Top,
		Pins:          []Pin{},
		PaletteHotkey: defaults.Dock.PaletteHotkey,
	}
	p.View = defaults.View
	p.LeftAlign = defaults.LeftAlign
	p.RandomPlaceholders = defaults.RandomPlaceholders
	p.ExpandImages = defaults.ExpandImages
	p.ExpandableImages = defaults.ExpandableImages
	p.NsfwBlur = defaults.NsfwBlur
	p.MarkReadPosts = defaults.MarkReadPosts
	p.CrosspostOriginalLink = defaults.CrosspostOriginalLink
	p.InfiniteScroll = defaults.InfiniteScroll
	p.Translator = defaults.Translator
	p.HidePosts = defaults.HidePosts
	p.Posts.DeduplicateEmbed = defaults.Posts.DeduplicateEmbed
	p.Posts.ShowHidden = defaults.Posts.ShowHidden
	p.Posts.ReverseActions = defaults.Posts.ReverseActions
}

// Migrate rewrites deprecated shapes to the current one and applies the
// forced-default reset. Idempotent: Migrate(Migrate(x)) == Migrate(x).
func Migrate(p *Persisted, defaults Settings) {
	for _, step := range migrations {
		step.apply(p, defaults)
	}
	forcedDefaults(p, defaults)
}

// Load merges a persisted blob over the defaults: decode leniently,
// migrate forward, and stamp the current version so a stale persisted
// tag can never masquerade as current. A nil or unreadable blob yields
// the defaults unchanged.
func Load(defaults Settings, raw []byte) Settings {
	if len(raw) == 0 {
		return defaults
	}

	p := Persisted{Settings: defaults}
	p.Moderation.Presets = defaults.Moderation.Presets
	if err := json.Unmarshal(raw, &p); err != nil {
		return defaults
	}

	Migrate(&p, defaults)

	merged := p.Settings
	merged.Moderation = Moderation{Presets: p.Moderation.Presets}
	merged.SettingsVer = defaults.SettingsVer
	return merged
}
