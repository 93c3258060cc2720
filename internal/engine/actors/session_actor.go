package actors

import (
	"bytes"
	"log/slog"
	"time"

	stdctx "context"

	"comuna-reader/internal/auth"
	"comuna-reader/internal/i18n"
	"comuna-reader/internal/signal"
	"comuna-reader/internal/storage"
	"comuna-reader/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// TokenKey is where the persisted bearer token lives in the key-value
// store. The token is the sole durable credential; the user profile is a
// volatile cache refreshed from it.
const TokenKey = "comuna.site.token"

// Session is the observable session state. Token set with a nil User is
// the stale state pending a refresh.
type Session struct {
	Token string
	User  *auth.SiteUser
}

func (s Session) Authenticated() bool { return s.Token != "" && s.User != nil }
func (s Session) Anonymous() bool     { return s.Token == "" }

// Message types for session operations
type (
	// StartSessionMsg restores a persisted token and schedules one
	// refresh so the UI reflects a valid session without user action.
	StartSessionMsg struct{}

	GetSessionMsg struct{}

	LoginMsg struct {
		Username string
		Password string
	}

	RegisterMsg struct {
		Payload auth.RegisterPayload
	}

	TelegramLoginMsg struct {
		Payload auth.TelegramAuthPayload
	}

	VKLoginMsg struct {
		Payload auth.VKAuthPayload
	}

	RefreshMsg struct{}

	LogoutMsg struct{}

	VerificationCodeMsg struct{}

	UserPostsMsg struct {
		Limit  int
		Offset int
	}

	CreatePostMsg struct {
		Payload auth.CreatePostPayload
	}

	UpdatePostMsg struct {
		PostID  int
		Payload auth.UpdatePostPayload
	}

	UploadImageMsg struct {
		Filename string
		Data     []byte
	}
)

// UserPostsResult pairs the author's posts with the backend total.
type UserPostsResult struct {
	Posts []auth.SiteUserPost
	Total int
}

// SessionActor is the single writer for session state. Network calls run
// inside Receive; on any failure the stored state is left untouched,
// except Refresh, which treats a rejected token as terminal.
type SessionActor struct {
	client  *auth.Client
	store   storage.KeyValue
	session *signal.Value[Session]
	logger  *slog.Logger
}

func NewSessionActor(client *auth.Client, store storage.KeyValue, session *signal.Value[Session], logger *slog.Logger) actor.Actor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionActor{
		client:  client,
		store:   store,
		session: session,
		logger:  logger,
	}
}

func (a *SessionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *StartSessionMsg:
		token := a.readPersistedToken()
		if token != "" {
			a.session.Set(Session{Token: token})
			if expiry, ok := auth.TokenExpiry(token); ok {
				a.logger.Info("restored persisted session", "expires", expiry.Format(time.RFC3339))
			} else {
				a.logger.Info("restored persisted session")
			}
			// One automatic refresh; the result lands in the session
			// signal, nobody waits on it.
			context.Send(context.Self(), &RefreshMsg{})
		}
		context.Respond(a.session.Get())

	case *GetSessionMsg:
		context.Respond(a.session.Get())

	case *LoginMsg:
		token, user, err := a.client.Login(stdctx.Background(), msg.Username, msg.Password)
		a.respondLogin(context, token, user, err)

	case *RegisterMsg:
		token, user, err := a.client.Register(stdctx.Background(), msg.Payload)
		a.respondLogin(context, token, user, err)

	case *TelegramLoginMsg:
		token, user, err := a.client.LoginTelegram(stdctx.Background(), msg.Payload)
		a.respondLogin(context, token, user, err)

	case *VKLoginMsg:
		token, user, err := a.client.LoginVK(stdctx.Background(), msg.Payload)
		a.respondLogin(context, token, user, err)

	case *RefreshMsg:
		current := a.session.Get()
		if current.Token == "" {
			a.session.Set(Session{})
			context.Respond((*auth.SiteUser)(nil))
			return
		}

		user, err := a.client.Me(stdctx.Background(), current.Token)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrTransport) {
				// Backend unreachable says nothing about the token.
				context.Respond(err)
				return
			}
			// Rejected token is terminal: no retry, back to anonymous.
			a.logger.Info("session token rejected, clearing session")
			a.clearSession()
			context.Respond((*auth.SiteUser)(nil))
			return
		}
		if user == nil {
			context.Respond((*auth.SiteUser)(nil))
			return
		}
		a.session.Set(Session{Token: current.Token, User: user})
		context.Respond(user)

	case *LogoutMsg:
		a.clearSession()
		context.Respond(true)

	case *VerificationCodeMsg:
		token, ok := a.requireToken(context)
		if !ok {
			return
		}
		code, err := a.client.VerificationCode(stdctx.Background(), token)
		if err != nil {
			context.Respond(err)
			return
		}
		context.Respond(code)

	case *UserPostsMsg:
		token, ok := a.requireToken(context)
		if !ok {
			return
		}
		posts, total, err := a.client.UserPosts(stdctx.Background(), token, msg.Limit, msg.Offset)
		if err != nil {
			context.Respond(err)
			return
		}
		context.Respond(&UserPostsResult{Posts: posts, Total: total})

	case *CreatePostMsg:
		token, ok := a.requireToken(context)
		if !ok {
			return
		}
		post, err := a.client.CreatePost(stdctx.Background(), token, msg.Payload)
		if err != nil {
			context.Respond(err)
			return
		}
		context.Respond(post)

	case *UpdatePostMsg:
		token, ok := a.requireToken(context)
		if !ok {
			return
		}
		post, err := a.client.UpdatePost(stdctx.Background(), token, msg.PostID, msg.Payload)
		if err != nil {
			context.Respond(err)
			return
		}
		context.Respond(post)

	case *UploadImageMsg:
		token, ok := a.requireToken(context)
		if !ok {
			return
		}
		url, err := a.client.UploadImage(stdctx.Background(), token, msg.Filename, bytes.NewReader(msg.Data))
		if err != nil {
			context.Respond(err)
			return
		}
		context.Respond(url)
	}
}

// requireToken fails authenticated operations fast, before any network
// call, when no token is present.
func (a *SessionActor) requireToken(context actor.Context) (string, bool) {
	current := a.session.Get()
	if current.Token == "" {
		context.Respond(utils.NewUnauthenticatedError(i18n.T("auth_required")))
		return "", false
	}
	return current.Token, true
}

func (a *SessionActor) respondLogin(context actor.Context, token string, user *auth.SiteUser, err error) {
	if err != nil {
		// Failed logins never mutate stored state.
		context.Respond(err)
		return
	}
	a.saveToken(token)
	a.session.Set(Session{Token: token, User: user})
	context.Respond(user)
}

func (a *SessionActor) readPersistedToken() string {
	if a.store == nil {
		return ""
	}
	token, ok, err := a.store.Get(TokenKey)
	if err != nil {
		a.logger.Warn("failed to read persisted token", "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

func (a *SessionActor) saveToken(token string) {
	if a.store == nil {
		return
	}
	if err := a.store.Set(TokenKey, token); err != nil {
		a.logger.Warn("failed to persist token", "err", err)
	}
}

func (a *SessionActor) clearSession() {
	if a.store != nil {
		if err := a.store.Remove(TokenKey); err != nil {
			a.logger.Warn("failed to remove persisted token", "err", err)
		}
	}
	a.session.Set(Session{})
}
