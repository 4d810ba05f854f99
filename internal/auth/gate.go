package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
	"golang.org/x/oauth2"

	"edevents/internal/dto"
)

const (
	sessionName = "edevents-session"
	identityKey = "identity"
)

// Identity is the authenticated caller as reported by the identity
// provider.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Config struct {
	ClientID          string
	ClientSecret      string
	AuthURL           string
	TokenURL          string
	UserInfoURL       string
	RedirectURL       string
	SessionSecret     string
	JWTSecret         string
	PostLoginRedirect string
}

// Gate delegates identity to an external OAuth2 provider and keeps the
// resulting identity in a cookie session. API clients may present a bearer
// token instead.
type Gate struct {
	oauth             *oauth2.Config
	store             *sessions.CookieStore
	userInfoURL       string
	jwtSecret         []byte
	postLoginRedirect string
	log               *zerolog.Logger
}

func NewGate(cfg Config, log *zerolog.Logger) *Gate {
	return &Gate{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		store:             sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		userInfoURL:       cfg.UserInfoURL,
		jwtSecret:         []byte(cfg.JWTSecret),
		postLoginRedirect: cfg.PostLoginRedirect,
		log:               log,
	}
}

func (g *Gate) Login(ctx *ginext.Context) {
	g.redirectToProvider(ctx)
}

// Register is the same flow with a registration hint for the provider.
func (g *Gate) Register(ctx *ginext.Context) {
	g.redirectToProvider(ctx, oauth2.SetAuthURLParam("prompt", "create"))
}

func (g *Gate) redirectToProvider(ctx *ginext.Context, opts ...oauth2.AuthCodeOption) {
	state := uuid.NewString()

	session, _ := g.store.Get(ctx.Request, sessionName)
	session.Values["state"] = state
	if err := session.Save(ctx.Request, ctx.Writer); err != nil {
		g.log.Error().Err(err).Msg("failed to save session state")
		dto.InternalServerError(ctx)
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, g.oauth.AuthCodeURL(state, opts...))
}

func (g *Gate) Callback(ctx *ginext.Context) {
	session, _ := g.store.Get(ctx.Request, sessionName)

	wantState, _ := session.Values["state"].(string)
	if wantState == "" || ctx.Query("state") != wantState {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid state parameter")
		return
	}

	code := ctx.Query("code")
	if code == "" {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Code not found")
		return
	}

	token, err := g.oauth.Exchange(ctx.Request.Context(), code)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to exchange authorization code")
		dto.InternalServerError(ctx)
		return
	}

	identity, err := g.fetchUserInfo(ctx, token)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to fetch user info")
		dto.InternalServerError(ctx)
		return
	}

	delete(session.Values, "state")
	session.Values["email"] = identity.Email
	session.Values["name"] = identity.Name
	if err := session.Save(ctx.Request, ctx.Writer); err != nil {
		g.log.Error().Err(err).Msg("failed to save session")
		dto.InternalServerError(ctx)
		return
	}

	ctx.Redirect(http.StatusSeeOther, g.postLoginRedirect)
}

func (g *Gate) fetchUserInfo(ctx *ginext.Context, token *oauth2.Token) (Identity, error) {
	client := g.oauth.Client(ctx.Request.Context(), token)
	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, err
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (g *Gate) Logout(ctx *ginext.Context) {
	session, _ := g.store.Get(ctx.Request, sessionName)
	session.Values["email"] = ""
	session.Values["name"] = ""
	session.Options.MaxAge = -1
	_ = session.Save(ctx.Request, ctx.Writer)

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (g *Gate) Me(ctx *ginext.Context) {
	identity, ok := g.currentIdentity(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	dto.SuccessResponse(ctx, map[string]Identity{"user": identity})
}

// RequireUser rejects the request unless the caller holds a valid session
// cookie or bearer token. The identity is stored on the context for
// downstream handlers.
func (g *Gate) RequireUser() ginext.HandlerFunc {
	return func(ctx *ginext.Context) {
		identity, ok := g.currentIdentity(ctx)
		if !ok {
			dto.UnauthorizedError(ctx)
			ctx.Abort()
			return
		}
		ctx.Set(identityKey, identity)
		ctx.Next()
	}
}

func (g *Gate) currentIdentity(ctx *ginext.Context) (Identity, bool) {
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		identity, err := VerifyToken(g.jwtSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return Identity{}, false
		}
		return identity, true
	}

	session, err := g.store.Get(ctx.Request, sessionName)
	if err != nil {
		return Identity{}, false
	}
	email, _ := session.Values["email"].(string)
	if email == "" {
		return Identity{}, false
	}
	name, _ := session.Values["name"].(string)
	return Identity{Email: email, Name: name}, true
}
