package connectify

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// GetRouterSession resolves the session claims stored by the middleware.
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToMapClaims
	}

	return sessionFromAuthClaims(claims)
}

// RegisterAPIRoutes mounts the account, engagement, track and playlist
// endpoints on the given router.
func RegisterAPIRoutes[T any](app router.Router[T], opts ...APIControllerOption) {

	controller := NewAPIController(opts...)

	app.Post("/signup", controller.Signup).SetName("account.signup")
	app.Post("/verify-email", controller.VerifyEmail).SetName("account.verify")
	app.Post("/login", controller.Login).SetName("account.login")
	app.Post("/logout", controller.Logout).SetName("account.logout")
	app.Post("/forgot-password", controller.ForgotPassword).SetName("account.forgot")
	app.Post("/reset-password", controller.ResetPassword).SetName("account.reset")

	app.Post("/tracks/:id/toggle-like", controller.ToggleLike).SetName("engagement.like")
	app.Post("/users/:id/toggle-follow", controller.ToggleFollow).SetName("engagement.follow")

	app.Get("/feed", controller.Feed).SetName("tracks.feed")
	app.Get("/tracks", controller.RecentTracks).SetName("tracks.recent")
	app.Get("/tracks/:id", controller.TrackByID).SetName("tracks.get")
	app.Post("/tracks", controller.CreateTrack).SetName("tracks.create")
	app.Delete("/tracks/:id", controller.DeleteTrack).SetName("tracks.delete")

	app.Get("/search/users", controller.SearchUsers).SetName("search.users")
	app.Get("/search/tracks", controller.SearchTracks).SetName("search.tracks")
	app.Get("/users/:username", controller.UserProfile).SetName("users.profile")
	app.Get("/users/:username/tracks", controller.UserTracks).SetName("users.tracks")
	app.Get("/me/liked", controller.LikedTracks).SetName("me.liked")

	app.Get("/me/playlists", controller.UserPlaylists).SetName("playlists.mine")
	app.Get("/playlists/:id", controller.PlaylistByID).SetName("playlists.get")
	app.Post("/playlists", controller.CreatePlaylist).SetName("playlists.create")
	app.Patch("/playlists/:id/tracks", controller.MutatePlaylistTracks).SetName("playlists.tracks")
	app.Delete("/playlists/:id", controller.DeletePlaylist).SetName("playlists.delete")
}

type APIController struct {
	Debug   bool
	Logger  Logger
	Repo    RepositoryManager
	Auther  *RouteAuthenticator
	Tokens  TokenService
	Config  Config
	Mailer  Mailer
	Queries *QueryService
	Sink    ActivitySink
	Assets  AssetStore

	signup        *SignupHandler
	verify        *VerifyEmailHandler
	login         *LoginHandler
	resetInit     *InitializePasswordResetHandler
	resetFinalize *FinalizePasswordResetHandler
	toggle        *ToggleRelationHandler
	tracks        *TrackHandler
	playlists     *PlaylistHandler
}

type APIControllerOption func(*APIController) *APIController

func WithControllerRepo(repo RepositoryManager) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Auther = auther
		return c
	}
}

func WithControllerTokens(tokens TokenService) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerConfig(cfg Config) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Config = cfg
		return c
	}
}

func WithControllerMailer(mailer Mailer) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerLogger(logger Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Logger = logger
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Sink = normalizeActivitySink(sink)
		return c
	}
}

func WithControllerAssetStore(store AssetStore) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Assets = store
		return c
	}
}

func WithControllerDebug(debug bool) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Debug = debug
		return c
	}
}

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger: defLogger{},
		Mailer: NoopMailer{},
		Sink:   noopActivitySink{},
		Assets: PassthroughAssetStore{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in API controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in API controller...")
	}

	if c.Config == nil {
		panic("Missing Config in API controller...")
	}

	if c.Auther == nil {
		auther, err := NewRouteAuthenticator(c.Tokens, c.Config)
		if err != nil {
			panic("Failed to build route authenticator: " + err.Error())
		}
		c.Auther = auther
	}

	c.Queries = NewQueryService(c.Repo, c.Logger)

	c.signup = NewSignupHandler(c.Repo, c.Mailer, c.Logger)
	c.verify = NewVerifyEmailHandler(c.Repo, c.Tokens,
		WithVerifyEmailMailer(c.Mailer),
		WithVerifyEmailLogger(c.Logger),
		WithVerifyEmailActivitySink(c.Sink),
	)
	c.login = NewLoginHandler(c.Repo, c.Tokens,
		WithLoginLogger(c.Logger),
		WithLoginActivitySink(c.Sink),
	)
	c.resetInit = NewInitializePasswordResetHandler(c.Repo, c.Config,
		WithPasswordResetMailer(c.Mailer),
		WithPasswordResetLogger(c.Logger),
		WithPasswordResetActivitySink(c.Sink),
	)
	c.resetFinalize = NewFinalizePasswordResetHandler(c.Repo,
		WithPasswordResetMailer(c.Mailer),
		WithPasswordResetLogger(c.Logger),
		WithPasswordResetActivitySink(c.Sink),
	)
	c.toggle = NewToggleRelationHandler(c.Repo,
		WithToggleLogger(c.Logger),
		WithToggleActivitySink(c.Sink),
	)
	c.tracks = NewTrackHandler(c.Repo,
		WithTrackAssetStore(c.Assets),
		WithTrackLogger(c.Logger),
	)
	c.playlists = NewPlaylistHandler(c.Repo, c.Logger)

	return c
}

// SignupRequest payload
type SignupRequest struct {
	Username string `form:"username" json:"username"`
	FullName string `form:"full_name" json:"full_name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(2, 60)),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *APIController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("signup payload: %s", print.MaybePrettyJSON(payload))
	}

	var email string
	req := SignupMessage{
		Username: payload.Username,
		FullName: payload.FullName,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(e string) {
			email = e
		},
	}

	if err := a.signup.Execute(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"email": email,
	})
}

// VerifyEmailRequest payload
type VerifyEmailRequest struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"code" json:"code"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *APIController) VerifyEmail(ctx router.Context) error {
	payload := new(VerifyEmailRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var account *AccountProjection
	req := VerifyEmailMessage{
		Email: payload.Email,
		Code:  payload.Code,
		OnResponse: func(resp *AccountProjection) {
			account = resp
		},
	}

	if err := a.verify.Execute(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	if account.Token != nil {
		a.Auther.IssueSession(ctx, *account.Token)
	}

	return ctx.JSON(router.StatusOK, account)
}

// LoginRequest payload. The identifier is a username or an email; the
// command layer resolves whichever was sent.
type LoginRequest struct {
	UsernameOrEmail string `form:"username_or_email" json:"username_or_email"`
	Password        string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UsernameOrEmail, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var res *LoginResponse
	req := LoginMessage{
		Identifier: payload.UsernameOrEmail,
		Password:   payload.Password,
		OnResponse: func(resp *LoginResponse) {
			res = resp
		},
	}

	if err := a.login.Execute(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	// Unverified accounts get the projection back with no credential so the
	// client can route to the verification screen.
	if res.Verified {
		a.Auther.IssueSession(ctx, res.Token)
	}

	return ctx.JSON(router.StatusOK, res.Account)
}

func (a *APIController) Logout(ctx router.Context) error {
	a.Auther.ClearSession(ctx)
	return ctx.JSON(router.StatusOK, map[string]any{"success": true})
}

// ForgotPasswordRequest payload. Accepts a username or an email, same as
// login.
type ForgotPasswordRequest struct {
	UsernameOrEmail string `form:"username_or_email" json:"username_or_email"`
}

// Validate will run validation rules
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UsernameOrEmail, validation.Required),
	)
}

func (a *APIController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var res *InitializePasswordResetResponse
	req := InitializePasswordResetMessage{
		Identifier: payload.UsernameOrEmail,
		OnResponse: func(resp *InitializePasswordResetResponse) {
			res = resp
		},
	}

	// NOTE: surfacing NOT_FOUND here discloses account existence. Masking is
	// a presentation concern: a deployment that wants to hide it maps the
	// error to a generic success in its own handler.
	if err := a.resetInit.Execute(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"success": res.Success})
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will run validation rules. Password/confirmation equality is
// checked by the command so mismatches surface with their own text code
// instead of a generic validation failure.
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(40, 40)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

func (a *APIController) ResetPassword(ctx router.Context) error {
	payload := new(ResetPasswordRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var success bool
	req := FinalizePasswordResetMessage{
		Token:           payload.Token,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
		OnResponse: func(ok bool) {
			success = ok
		},
	}

	if err := a.resetFinalize.Execute(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"success": success})
}

func (a *APIController) ToggleLike(ctx router.Context) error {
	return a.toggleRelation(ctx, RelationLike)
}

func (a *APIController) ToggleFollow(ctx router.Context) error {
	return a.toggleRelation(ctx, RelationFollow)
}

func (a *APIController) toggleRelation(ctx router.Context, kind RelationKind) error {
	target, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.commandError(ctx, goerrors.New("invalid target id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest))
	}

	var active bool
	req := ToggleRelationMessage{
		Kind:     kind,
		ActorID:  a.currentActor(ctx),
		TargetID: target,
		OnResponse: func(state bool) {
			active = state
		},
	}

	if err := a.toggle.Execute(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"active": active})
}

func (a *APIController) Feed(ctx router.Context) error {
	records, err := a.Queries.Feed(ctx.Context(), a.currentActor(ctx), a.pageParam(ctx))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) RecentTracks(ctx router.Context) error {
	records, err := a.Queries.RecentTracks(ctx.Context(), a.currentActor(ctx), a.pageParam(ctx))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) TrackByID(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.commandError(ctx, ErrTrackNotFound)
	}

	record, err := a.Queries.TrackByID(ctx.Context(), a.currentActor(ctx), id)
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, record)
}

// CreateTrackRequest payload
type CreateTrackRequest struct {
	Title         string `form:"title" json:"title"`
	Artist        string `form:"artist" json:"artist"`
	Duration      string `form:"duration" json:"duration"`
	AudioFileURL  string `form:"audio_file_url" json:"audio_file_url"`
	CoverImageURL string `form:"cover_image_url" json:"cover_image_url"`
}

// Validate will run validation rules
func (r CreateTrackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.AudioFileURL, validation.Required, is.URL),
		validation.Field(&r.CoverImageURL, is.URL),
	)
}

func (a *APIController) CreateTrack(ctx router.Context) error {
	payload := new(CreateTrackRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var track *Track
	req := CreateTrackMessage{
		Title:         payload.Title,
		Artist:        payload.Artist,
		Duration:      payload.Duration,
		AudioFileURL:  payload.AudioFileURL,
		CoverImageURL: payload.CoverImageURL,
		AuthorID:      a.currentActor(ctx),
		OnResponse: func(t *Track) {
			track = t
		},
	}

	if err := a.tracks.ExecuteCreate(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, track)
}

func (a *APIController) DeleteTrack(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.commandError(ctx, ErrTrackNotFound)
	}

	var success bool
	req := DeleteTrackMessage{
		TrackID: id,
		ActorID: a.currentActor(ctx),
		OnResponse: func(ok bool) {
			success = ok
		},
	}

	if err := a.tracks.ExecuteDelete(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"success": success})
}

func (a *APIController) SearchUsers(ctx router.Context) error {
	records, err := a.Queries.SearchUsers(ctx.Context(), ctx.Query("q", ""), a.pageParam(ctx))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) SearchTracks(ctx router.Context) error {
	records, err := a.Queries.SearchTracks(ctx.Context(), a.currentActor(ctx), ctx.Query("q", ""), a.pageParam(ctx))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) UserProfile(ctx router.Context) error {
	profile, err := a.Queries.UserProfile(ctx.Context(), a.currentActor(ctx), ctx.Param("username"))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, profile)
}

func (a *APIController) UserTracks(ctx router.Context) error {
	records, err := a.Queries.UserTracks(ctx.Context(), a.currentActor(ctx), ctx.Param("username"))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) LikedTracks(ctx router.Context) error {
	records, err := a.Queries.LikedTracks(ctx.Context(), a.currentActor(ctx))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) UserPlaylists(ctx router.Context) error {
	records, err := a.Queries.UserPlaylists(ctx.Context(), a.currentActor(ctx))
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) PlaylistByID(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.commandError(ctx, ErrPlaylistNotFound)
	}

	record, err := a.Queries.PlaylistByID(ctx.Context(), a.currentActor(ctx), id)
	if err != nil {
		return a.commandError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, record)
}

// CreatePlaylistRequest payload
type CreatePlaylistRequest struct {
	Name          string   `form:"name" json:"name"`
	CoverImageURL string   `form:"cover_image_url" json:"cover_image_url"`
	Visibility    string   `form:"visibility" json:"visibility"`
	TrackIDs      []string `form:"track_ids" json:"track_ids"`
}

// Validate will run validation rules
func (r CreatePlaylistRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Visibility, validation.In(VisibilityPublic, VisibilityPrivate)),
	)
}

func (a *APIController) CreatePlaylist(ctx router.Context) error {
	payload := new(CreatePlaylistRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var playlist *Playlist
	req := CreatePlaylistMessage{
		Name:          payload.Name,
		CoverImageURL: payload.CoverImageURL,
		Visibility:    payload.Visibility,
		TrackIDs:      payload.TrackIDs,
		AuthorID:      a.currentActor(ctx),
		OnResponse: func(p *Playlist) {
			playlist = p
		},
	}

	if err := a.playlists.ExecuteCreate(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, playlist)
}

// MutatePlaylistTracksRequest payload
type MutatePlaylistTracksRequest struct {
	TrackID string `form:"track_id" json:"track_id"`
	Remove  bool   `form:"remove" json:"remove"`
}

// Validate will run validation rules
func (r MutatePlaylistTracksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TrackID, validation.Required, is.UUIDv4),
	)
}

func (a *APIController) MutatePlaylistTracks(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.commandError(ctx, ErrPlaylistNotFound)
	}

	payload := new(MutatePlaylistTracksRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var playlist *Playlist
	req := MutatePlaylistTracksMessage{
		PlaylistID: id,
		TrackID:    payload.TrackID,
		ActorID:    a.currentActor(ctx),
		Remove:     payload.Remove,
		OnResponse: func(p *Playlist) {
			playlist = p
		},
	}

	if err := a.playlists.ExecuteMutateTracks(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, playlist)
}

func (a *APIController) DeletePlaylist(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.commandError(ctx, ErrPlaylistNotFound)
	}

	var success bool
	req := DeletePlaylistMessage{
		PlaylistID: id,
		ActorID:    a.currentActor(ctx),
		OnResponse: func(ok bool) {
			success = ok
		},
	}

	if err := a.playlists.ExecuteDelete(ctx.Context(), req); err != nil {
		return a.commandError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"success": success})
}

// currentActor resolves the request's session into an actor id. uuid.Nil
// means anonymous; commands decide whether that is acceptable.
func (a *APIController) currentActor(ctx router.Context) uuid.UUID {
	session, ok := a.Auther.CurrentSession(ctx)
	if !ok {
		return uuid.Nil
	}

	id, err := session.GetUserUUID()
	if err != nil {
		return uuid.Nil
	}

	return id
}

func (a *APIController) pageParam(ctx router.Context) int {
	page, err := strconv.Atoi(ctx.Query("page", "0"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func (a *APIController) bindError(ctx router.Context, err error) error {
	a.Logger.Error("request bind failed: %v", err)
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "failed to parse request body",
		},
	})
}

func (a *APIController) validationError(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "validation failed",
			"fields":  FormatValidationErrorToMap(err),
		},
	})
}

func (a *APIController) commandError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	if a.Debug {
		a.Logger.Debug("command error: %s", print.MaybePrettyJSON(richErr))
	}

	return ctx.JSON(richErr.Code, errorBody(richErr))
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field → message map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
