package actors

import (
	"encoding/json"
	"log/slog"

	"comuna-reader/internal/settings"
	"comuna-reader/internal/signal"
	"comuna-reader/internal/storage"

	"github.com/asynkron/protoactor-go/actor"
)

// SettingsKey is where the serialized settings record lives in the
// key-value store.
const SettingsKey = "settings"

// Message types for settings operations
type (
	// LoadSettingsMsg performs the one-time Uninitialized -> Loaded
	// transition: read the persisted copy, migrate, merge over defaults.
	LoadSettingsMsg struct{}

	GetSettingsMsg struct{}

	// UpdateSettingsMsg applies a partial change to the current record.
	UpdateSettingsMsg struct {
		Apply func(*settings.Settings)
	}
)

// SettingsActor is the single writer for the settings record. A nil
// store means the server-rendered Uninitialized state: defaults only,
// nothing persisted.
type SettingsActor struct {
	defaults settings.Settings
	store    storage.KeyValue
	value    *signal.Value[settings.Settings]
	loaded   bool
	logger   *slog.Logger
}

func NewSettingsActor(defaults settings.Settings, store storage.KeyValue, value *signal.Value[settings.Settings], logger *slog.Logger) actor.Actor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsActor{
		defaults: defaults,
		store:    store,
		value:    value,
		logger:   logger,
	}
}

func (a *SettingsActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *LoadSettingsMsg:
		if a.loaded || a.store == nil {
			context.Respond(a.value.Get())
			return
		}

		var raw []byte
		stored, ok, err := a.store.Get(SettingsKey)
		if err != nil {
			a.logger.Warn("failed to read persisted settings", "err", err)
		} else if ok {
			raw = []byte(stored)
		}

		loaded := settings.Load(a.defaults, raw)
		a.loaded = true
		a.value.Set(loaded)
		a.persist(loaded)
		context.Respond(loaded)

	case *GetSettingsMsg:
		context.Respond(a.value.Get())

	case *UpdateSettingsMsg:
		current := a.value.Get()
		if msg.Apply != nil {
			msg.Apply(&current)
		}
		current.SettingsVer = a.defaults.SettingsVer
		a.value.Set(current)
		a.persist(current)
		context.Respond(current)
	}
}

// persist writes through on every change. The persisted copy is a cache,
// not a system of record; a write failure is logged and not surfaced.
func (a *SettingsActor) persist(current settings.Settings) {
	if a.store == nil {
		return
	}
	raw, err := json.Marshal(current)
	if err != nil {
		a.logger.Warn("failed to serialize settings", "err", err)
		return
	}
	if err := a.store.Set(SettingsKey, string(raw)); err != nil {
		a.logger.Warn("failed to persist settings", "err", err)
	}
}
