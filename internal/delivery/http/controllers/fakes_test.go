package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ourevents/internal/delivery/http/helpers"
	"ourevents/internal/delivery/http/middleware"
	"ourevents/internal/domain"

	"github.com/stretchr/testify/require"
)

var (
	adminActor = &domain.Identity{UserID: 1, Email: "admin@eventapi.com", Roles: []string{domain.RoleUser, domain.RoleAdmin}}
	userActor  = &domain.Identity{UserID: 2, Email: "user@eventapi.com", Roles: []string{domain.RoleUser}}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// serve routes a single request through a mux registered with pattern so that
// PathValue works, attaching actor to the context when non-nil.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target, body string, actor *domain.Identity) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if actor != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), actor))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := decode(t, rr)
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

type fakeEventService struct {
	page       *domain.EventPage
	event      *domain.Event
	registered []*domain.Event
	err        error

	lastFilter domain.EventFilter
	lastPage   domain.PaginationParams
	lastActor  *domain.Identity
	lastInput  domain.EventInput
	lastPatch  domain.EventPatch
	lastID     int64
}

func (f *fakeEventService) List(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) (*domain.EventPage, error) {
	f.lastFilter, f.lastPage = filter, page
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeEventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) Create(ctx context.Context, actor *domain.Identity, in domain.EventInput) (*domain.Event, error) {
	f.lastActor, f.lastInput = actor, in
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) Update(ctx context.Context, actor *domain.Identity, id int64, patch domain.EventPatch) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastPatch = actor, id, patch
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	f.lastActor, f.lastID = actor, id
	return f.err
}

func (f *fakeEventService) ListRegistered(ctx context.Context, actor *domain.Identity) ([]*domain.Event, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.registered, nil
}

type registrationCall struct {
	action          string
	actor           *domain.Identity
	userID, eventID int64
}

type fakeRegistrationService struct {
	calls []registrationCall
	err   error
}

func (f *fakeRegistrationService) Register(ctx context.Context, actor *domain.Identity, userID, eventID int64) error {
	f.calls = append(f.calls, registrationCall{domain.RegistrationActionRegister, actor, userID, eventID})
	return f.err
}

func (f *fakeRegistrationService) Unregister(ctx context.Context, actor *domain.Identity, userID, eventID int64) error {
	f.calls = append(f.calls, registrationCall{domain.RegistrationActionUnregister, actor, userID, eventID})
	return f.err
}

type fakeCategoryService struct {
	categories []*domain.Category
	err        error
	lastName   string
	lastID     int64
}

func (f *fakeCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return f.categories, f.err
}

func (f *fakeCategoryService) Create(ctx context.Context, actor *domain.Identity, name string) (*domain.Category, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: 9, Name: name}, nil
}

func (f *fakeCategoryService) Update(ctx context.Context, actor *domain.Identity, id int64, name string) (*domain.Category, error) {
	f.lastID, f.lastName = id, name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: id, Name: name}, nil
}

func (f *fakeCategoryService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	f.lastID = id
	return f.err
}

type fakePremiseService struct {
	premises []*domain.Premise
	err      error
	last     *domain.Premise
	lastID   int64
}

func (f *fakePremiseService) List(ctx context.Context) ([]*domain.Premise, error) {
	return f.premises, f.err
}

func (f *fakePremiseService) Create(ctx context.Context, actor *domain.Identity, p *domain.Premise) (*domain.Premise, error) {
	f.last = p
	if f.err != nil {
		return nil, f.err
	}
	out := *p
	out.ID = 6
	return &out, nil
}

func (f *fakePremiseService) Update(ctx context.Context, actor *domain.Identity, p *domain.Premise) (*domain.Premise, error) {
	f.last = p
	if f.err != nil {
		return nil, f.err
	}
	return p, nil
}

func (f *fakePremiseService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	f.lastID = id
	return f.err
}

type fakeAuthService struct {
	token     string
	user      *domain.User
	err       error
	lastInput domain.SignUpInput
}

func (f *fakeAuthService) SignUp(ctx context.Context, in domain.SignUpInput) (string, *domain.User, error) {
	f.lastInput = in
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

type fakeUserService struct {
	user   *domain.User
	users  []*domain.User
	err    error
	lastID int64
}

func (f *fakeUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) List(ctx context.Context, actor *domain.Identity) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeUserService) ToggleAdmin(ctx context.Context, actor *domain.Identity, id int64) (*domain.User, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}
