package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"ourevents/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var (
	admin = &domain.Identity{UserID: 1, Email: "admin@eventapi.com", Roles: []string{domain.RoleUser, domain.RoleAdmin}}
	alice = &domain.Identity{UserID: 2, Email: "user@eventapi.com", Roles: []string{domain.RoleUser}}
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu                 sync.Mutex
	byID               map[int64]*domain.Event
	nextID             int64
	attendees          map[int64][]int64 // user id -> event ids
	listResult         *domain.EventPage
	listErr            error
	listCalls          int
	lastFilter         domain.EventFilter
	onList             func()
	createErr          error
	replacedCategories bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:      make(map[int64]*domain.Event),
		nextID:    1,
		attendees: make(map[int64][]int64),
	}
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) (*domain.EventPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastFilter = filter
	if f.onList != nil {
		f.onList()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listResult != nil {
		return f.listResult, nil
	}
	return &domain.EventPage{}, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	cp.Categories = slices.Clone(e.Categories)
	return &cp, nil
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = f.nextID
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event, replaceCategories bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[e.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	cp := *e
	if !replaceCategories {
		cp.Categories = stored.Categories
	}
	f.replacedCategories = replaceCategories
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) ListByAttendee(ctx context.Context, userID int64) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, id := range f.attendees[userID] {
		if e, ok := f.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakePremiseRepo is an in-memory PremiseRepository for tests.
type fakePremiseRepo struct {
	byID      map[int64]*domain.Premise
	nextID    int64
	deleteErr error
}

func newFakePremiseRepo(premises ...*domain.Premise) *fakePremiseRepo {
	f := &fakePremiseRepo{byID: make(map[int64]*domain.Premise), nextID: 100}
	for _, p := range premises {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePremiseRepo) List(ctx context.Context) ([]*domain.Premise, error) {
	var out []*domain.Premise
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePremiseRepo) GetByID(ctx context.Context, id int64) (*domain.Premise, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrPremiseNotFound
}

func (f *fakePremiseRepo) Create(ctx context.Context, p *domain.Premise) error {
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePremiseRepo) Update(ctx context.Context, p *domain.Premise) error {
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrPremiseNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePremiseRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrPremiseNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeCategoryRepo is an in-memory CategoryRepository for tests.
type fakeCategoryRepo struct {
	byID   map[int64]*domain.Category
	nextID int64
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byID: make(map[int64]*domain.Category), nextID: 100}
	for _, c := range categories {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	for _, existing := range f.byID {
		if existing.Name == c.Name {
			return fmt.Errorf("category %q: %w", c.Name, domain.ErrConflict)
		}
	}
	c.ID = f.nextID
	f.nextID++
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeCache is an in-memory EventListCache for tests. Like the Redis cache it keys
// pages by generation, and Invalidate only advances the generation.
type fakeCache struct {
	pages         map[string]*domain.EventPage
	gen           int64
	getErr        error
	sets          int
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string]*domain.EventPage)}
}

func cacheKey(gen int64, filter domain.EventFilter, page domain.PaginationParams) string {
	cat := "-"
	if filter.CategoryID != nil {
		cat = fmt.Sprint(*filter.CategoryID)
	}
	return fmt.Sprintf("v%d/%d/%d/%s/%s", gen, page.Page, page.PageSize, cat, filter.City)
}

func (f *fakeCache) Get(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) (*domain.EventPage, int64, bool, error) {
	if f.getErr != nil {
		return nil, 0, false, f.getErr
	}
	p, ok := f.pages[cacheKey(f.gen, filter, page)]
	return p, f.gen, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, gen int64, filter domain.EventFilter, page domain.PaginationParams, result *domain.EventPage) error {
	f.sets++
	f.pages[cacheKey(gen, filter, page)] = result
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context) error {
	f.invalidations++
	f.gen++
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID      map[int64]*domain.User
	nextID    int64
	createErr error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[int64]*domain.User), nextID: 100}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRoles(ctx context.Context, id int64, roles []string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Roles = slices.Clone(roles)
	return nil
}

// fakeRegistrationRepo applies the registration rules over in-memory sets.
type fakeRegistrationRepo struct {
	mu       sync.Mutex
	users    map[int64]bool
	events   map[int64]bool
	attended map[[2]int64]bool
	err      error
}

func newFakeRegistrationRepo(userIDs, eventIDs []int64) *fakeRegistrationRepo {
	f := &fakeRegistrationRepo{
		users:    make(map[int64]bool),
		events:   make(map[int64]bool),
		attended: make(map[[2]int64]bool),
	}
	for _, id := range userIDs {
		f.users[id] = true
	}
	for _, id := range eventIDs {
		f.events[id] = true
	}
	return f
}

func (f *fakeRegistrationRepo) check(userID, eventID int64) error {
	if f.err != nil {
		return f.err
	}
	if !f.users[userID] {
		return domain.ErrUserNotFound
	}
	if !f.events[eventID] {
		return domain.ErrEventNotFound
	}
	return nil
}

func (f *fakeRegistrationRepo) Register(ctx context.Context, userID, eventID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(userID, eventID); err != nil {
		return err
	}
	key := [2]int64{userID, eventID}
	if f.attended[key] {
		return domain.ErrAlreadyRegistered
	}
	f.attended[key] = true
	return nil
}

func (f *fakeRegistrationRepo) Unregister(ctx context.Context, userID, eventID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(userID, eventID); err != nil {
		return err
	}
	key := [2]int64{userID, eventID}
	if !f.attended[key] {
		return domain.ErrNotRegistered
	}
	delete(f.attended, key)
	return nil
}

// fakePublisher records published messages.
type fakePublisher struct {
	mu   sync.Mutex
	msgs []domain.RegistrationChanged
	err  error
}

func (f *fakePublisher) PublishRegistrationChanged(ctx context.Context, msg domain.RegistrationChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

// fakeEmailService records the emails it was asked to send.
type fakeEmailService struct {
	mu        sync.Mutex
	welcome   []*domain.WelcomeMessageEmailData
	confirmed []*domain.RegistrationConfirmedEmailData
	err       error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.welcome = append(f.welcome, data)
	return nil
}

func (f *fakeEmailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, data)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher with a reversible prefix.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err       error
	lastRoles []string
}

func (f *fakeTokenIssuer) Issue(userID int64, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastRoles = roles
	return fmt.Sprintf("token-%d", userID), nil
}
