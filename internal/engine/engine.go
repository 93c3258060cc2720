// Package engine owns the client-state stores. Settings and session
// state live behind actors so every mutation has a single writer; the
// Engine is the synchronous facade route code talks to, and the signal
// values are the read/subscribe surface.
package engine

import (
	"log/slog"
	"time"

	"comuna-reader/internal/auth"
	"comuna-reader/internal/engine/actors"
	"comuna-reader/internal/i18n"
	"comuna-reader/internal/settings"
	"comuna-reader/internal/signal"
	"comuna-reader/internal/storage"
	"comuna-reader/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Store messages can carry a network round-trip, so the ask timeout is
// wider than a local actor would need.
const askTimeout = 10 * time.Second

type Engine struct {
	system      *actor.ActorSystem
	settingsPID *actor.PID
	sessionPID  *actor.PID

	settingsValue *signal.Value[settings.Settings]
	sessionValue  *signal.Value[actors.Session]

	hasStorage bool
	logger     *slog.Logger
}

// NewEngine spawns the store actors. store may be nil for the
// server-rendered context: settings stay at defaults and no session is
// restored. The settings-changed locale side effect is registered here.
func NewEngine(system *actor.ActorSystem, defaults settings.Settings, store storage.KeyValue, authClient *auth.Client, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	settingsValue := signal.New(defaults)
	sessionValue := signal.New(actors.Session{})

	e := &Engine{
		system:        system,
		settingsValue: settingsValue,
		sessionValue:  sessionValue,
		hasStorage:    store != nil,
		logger:        logger,
	}

	e.settingsPID = system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewSettingsActor(defaults, store, settingsValue, logger)
	}))
	e.sessionPID = system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewSessionActor(authClient, store, sessionValue, logger)
	}))

	settingsValue.Subscribe(func(current settings.Settings) {
		if current.Language != "" {
			i18n.Locale.Set(current.Language)
		} else if e.hasStorage {
			// Client only: infer from the runtime environment.
			i18n.Locale.Set(i18n.SystemLocale())
		}
	})

	return e
}

// Start runs the one-time startup transitions: load persisted settings
// and restore the persisted session (which schedules its own refresh).
func (e *Engine) Start() error {
	if _, err := e.ask(e.settingsPID, &actors.LoadSettingsMsg{}, "settings-load"); err != nil {
		return err
	}
	if _, err := e.ask(e.sessionPID, &actors.StartSessionMsg{}, "session-start"); err != nil {
		return err
	}
	return nil
}

// Stop halts both store actors.
func (e *Engine) Stop() {
	e.system.Root.Stop(e.settingsPID)
	e.system.Root.Stop(e.sessionPID)
}

func (e *Engine) ask(pid *actor.PID, msg any, operation string) (any, error) {
	future := e.system.Root.RequestFuture(pid, msg, askTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(operation, err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

// Settings is the current record; on the server that is always the
// defaults.
func (e *Engine) Settings() settings.Settings {
	return e.settingsValue.Get()
}

// SettingsValue exposes the settings signal for subscriptions.
func (e *Engine) SettingsValue() *signal.Value[settings.Settings] {
	return e.settingsValue
}

// UpdateSettings merges a partial change into the current record,
// persists write-through and notifies subscribers.
func (e *Engine) UpdateSettings(apply func(*settings.Settings)) (settings.Settings, error) {
	result, err := e.ask(e.settingsPID, &actors.UpdateSettingsMsg{Apply: apply}, "settings-update")
	if err != nil {
		return settings.Settings{}, err
	}
	return result.(settings.Settings), nil
}

func (e *Engine) Session() actors.Session {
	return e.sessionValue.Get()
}

func (e *Engine) SessionValue() *signal.Value[actors.Session] {
	return e.sessionValue
}

func (e *Engine) askUser(msg any, operation string) (*auth.SiteUser, error) {
	result, err := e.ask(e.sessionPID, msg, operation)
	if err != nil {
		return nil, err
	}
	user, _ := result.(*auth.SiteUser)
	return user, nil
}

func (e *Engine) Login(username, password string) (*auth.SiteUser, error) {
	return e.askUser(&actors.LoginMsg{Username: username, Password: password}, "login")
}

func (e *Engine) Register(payload auth.RegisterPayload) (*auth.SiteUser, error) {
	return e.askUser(&actors.RegisterMsg{Payload: payload}, "register")
}

func (e *Engine) LoginTelegram(payload auth.TelegramAuthPayload) (*auth.SiteUser, error) {
	return e.askUser(&actors.TelegramLoginMsg{Payload: payload}, "telegram-login")
}

func (e *Engine) LoginVK(payload auth.VKAuthPayload) (*auth.SiteUser, error) {
	return e.askUser(&actors.VKLoginMsg{Payload: payload}, "vk-login")
}

// Refresh revalidates the persisted token. A rejected token silently
// resets the session to anonymous and yields a nil user, not an error.
func (e *Engine) Refresh() (*auth.SiteUser, error) {
	return e.askUser(&actors.RefreshMsg{}, "refresh")
}

func (e *Engine) Logout() error {
	_, err := e.ask(e.sessionPID, &actors.LogoutMsg{}, "logout")
	return err
}

func (e *Engine) VerificationCode() (string, error) {
	result, err := e.ask(e.sessionPID, &actors.VerificationCodeMsg{}, "verification-code")
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (e *Engine) UserPosts(limit, offset int) ([]auth.SiteUserPost, int, error) {
	result, err := e.ask(e.sessionPID, &actors.UserPostsMsg{Limit: limit, Offset: offset}, "user-posts")
	if err != nil {
		return nil, 0, err
	}
	posts := result.(*actors.UserPostsResult)
	return posts.Posts, posts.Total, nil
}

func (e *Engine) CreatePost(payload auth.CreatePostPayload) (*auth.SiteUserPost, error) {
	result, err := e.ask(e.sessionPID, &actors.CreatePostMsg{Payload: payload}, "create-post")
	if err != nil {
		return nil, err
	}
	post, _ := result.(*auth.SiteUserPost)
	return post, nil
}

func (e *Engine) UpdatePost(postID int, payload auth.UpdatePostPayload) (*auth.SiteUserPost, error) {
	result, err := e.ask(e.sessionPID, &actors.UpdatePostMsg{PostID: postID, Payload: payload}, "update-post")
	if err != nil {
		return nil, err
	}
	post, _ := result.(*auth.SiteUserPost)
	return post, nil
}

func (e *Engine) UploadImage(filename string, data []byte) (string, error) {
	result, err := e.ask(e.sessionPID, &actors.UploadImageMsg{Filename: filename, Data: data}, "upload-image")
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
