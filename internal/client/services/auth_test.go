package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/navigation"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	LoginRet    models.AuthResponse
	LoginErr    error
	RegisterRet models.AuthResponse
	RegisterErr error
	PingErr     error
	CloseErr    error

	// block, when set, holds every call until it is closed
	block   chan struct{}
	entered chan struct{}
	// onCall runs once the request is in flight, before the response returns
	onCall func()

	LoginCalls    int
	RegisterCalls int
	LastLogin     models.LoginCredentials
	LastRegister  models.Registration
}

func (f *fakeClient) wait() {
	if f.onCall != nil {
		f.onCall()
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeClient) Login(_ context.Context, creds models.LoginCredentials) (models.AuthResponse, error) {
	f.mu.Lock()
	f.LoginCalls++
	f.LastLogin = creds
	f.mu.Unlock()
	f.wait()
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(_ context.Context, reg models.Registration) (models.AuthResponse, error) {
	f.mu.Lock()
	f.RegisterCalls++
	f.LastRegister = reg
	f.mu.Unlock()
	f.wait()
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Ping(context.Context) error { return f.PingErr }
func (f *fakeClient) Close() error               { return f.CloseErr }

// ---- fake navigator ----

// fakeNav records navigations together with the session visible at the time.
type fakeNav struct {
	store   *session.Store
	current string
	calls   []string
	seen    []models.Session
	err     error
}

func (n *fakeNav) Navigate(_ context.Context, path string) error {
	n.calls = append(n.calls, path)
	s, _ := n.store.Get()
	n.seen = append(n.seen, s)
	if n.err != nil {
		return n.err
	}
	n.current = path
	return nil
}

func (n *fakeNav) Current() string { return n.current }

// ---- recording logger ----

type entry struct {
	level string
	msg   string
	args  []any
}

type recLogger struct {
	mu      sync.Mutex
	entries *[]entry
}

func newRecLogger() *recLogger { return &recLogger{entries: &[]entry{}} }

func (l *recLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, entry{level, msg, args})
}

func (l *recLogger) Debug(_ context.Context, msg string, args ...any) { l.add("debug", msg, args) }
func (l *recLogger) Info(_ context.Context, msg string, args ...any)  { l.add("info", msg, args) }
func (l *recLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recLogger) Error(_ context.Context, msg string, args ...any) { l.add("error", msg, args) }
func (l *recLogger) With(...any) logging.Logger                      { return l }

func (l *recLogger) errorEntries() []entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []entry
	for _, e := range *l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

// ---- fake uploader ----

type fakeUploader struct {
	got string
	url string
	err error
}

func (u *fakeUploader) Upload(_ context.Context, dataURL string) (string, error) {
	u.got = dataURL
	return u.url, u.err
}

// ---- helpers ----

func setup(t *testing.T, fc *fakeClient, opts ...Option) (AuthService, *session.Store, *fakeNav, *recLogger) {
	t.Helper()
	store := session.NewStore()
	nav := &fakeNav{store: store, current: navigation.RouteLogin}
	log := newRecLogger()
	svc := NewAuthService(fc, store, nav, append([]Option{WithLogger(log)}, opts...)...)
	return svc, store, nav, log
}

var okResponse = models.AuthResponse{Email: "a@b.com", Token: "t1", Picture: "p1", ID: "u1"}

// ---- TESTS ----

func TestLogin_Success_SetsSessionThenNavigatesOnce(t *testing.T) {
	fc := &fakeClient{LoginRet: okResponse}
	svc, store, nav, _ := setup(t, fc)

	err := svc.Login(context.Background(), models.LoginCredentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", got.User)
	assert.Equal(t, "t1", got.Token)
	assert.Equal(t, "p1", got.Picture)
	assert.Equal(t, "u1", got.UserID)

	require.Equal(t, []string{navigation.RouteHome}, nav.calls)
	// the store already held the session when navigation happened
	assert.Equal(t, got, nav.seen[0])

	assert.Equal(t, 1, fc.LoginCalls)
	assert.Equal(t, models.LoginCredentials{Email: "a@b.com", Password: "x"}, fc.LastLogin)
}

func TestRegister_Success(t *testing.T) {
	fc := &fakeClient{RegisterRet: okResponse}
	svc, store, nav, _ := setup(t, fc)

	reg := models.Registration{FirstName: "Ada", LastName: "L", Email: "a@b.com", Password: "pw", PictureURL: "data:image/png;base64,AA=="}
	require.NoError(t, svc.Register(context.Background(), reg))

	assert.Equal(t, reg, fc.LastRegister)
	_, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{navigation.RouteHome}, nav.calls)
}

func TestRegister_NoRequiredFields(t *testing.T) {
	fc := &fakeClient{RegisterRet: okResponse}
	svc, _, _, _ := setup(t, fc)

	require.NoError(t, svc.Register(context.Background(), models.Registration{}))
	assert.Equal(t, 1, fc.RegisterCalls)
}

func TestLogin_MissingFields_NoRequest(t *testing.T) {
	tests := []models.LoginCredentials{
		{Email: "a@b.com"},
		{Password: "x"},
		{},
	}
	for i, creds := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			fc := &fakeClient{LoginRet: okResponse}
			svc, store, nav, _ := setup(t, fc)

			err := svc.Login(context.Background(), creds)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.NotErrorIs(t, err, ErrSubmissionFailed)
			assert.Zero(t, fc.LoginCalls)
			_, ok := store.Get()
			assert.False(t, ok)
			assert.Empty(t, nav.calls)
		})
	}
}

func TestSubmission_Failures_LeaveSessionUntouched(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeClient
	}{
		{"unauthorized", &fakeClient{LoginErr: client.ErrUnauthorized, RegisterErr: client.ErrUnauthorized}},
		{"unavailable", &fakeClient{LoginErr: client.ErrUnavailable, RegisterErr: client.ErrUnavailable}},
		{"rejected", &fakeClient{LoginErr: client.ErrRejected, RegisterErr: client.ErrRejected}},
		{"partial response", &fakeClient{
			LoginRet:    models.AuthResponse{Email: "a@b.com"},
			RegisterRet: models.AuthResponse{Token: "t"},
		}},
	}

	for _, tt := range tests {
		t.Run("login/"+tt.name, func(t *testing.T) {
			svc, store, nav, log := setup(t, tt.fc)
			err := svc.Login(context.Background(), models.LoginCredentials{Email: "a@b.com", Password: "x"})

			require.ErrorIs(t, err, ErrSubmissionFailed)
			_, ok := store.Get()
			assert.False(t, ok)
			assert.Empty(t, nav.calls)
			require.Len(t, log.errorEntries(), 1)
			assert.Equal(t, "login submission failed", log.errorEntries()[0].msg)
		})
		t.Run("register/"+tt.name, func(t *testing.T) {
			svc, store, nav, log := setup(t, tt.fc)
			err := svc.Register(context.Background(), models.Registration{Email: "a@b.com"})

			require.ErrorIs(t, err, ErrSubmissionFailed)
			_, ok := store.Get()
			assert.False(t, ok)
			assert.Empty(t, nav.calls)
			require.Len(t, log.errorEntries(), 1)
			assert.Equal(t, "registration submission failed", log.errorEntries()[0].msg)
		})
	}
}

func TestLogin_FailureKeepsPreviousSession(t *testing.T) {
	fc := &fakeClient{LoginErr: client.ErrUnauthorized}
	svc, store, nav, _ := setup(t, fc)

	prev := models.Session{User: "old@b.com", Token: "old"}
	require.NoError(t, store.Set(context.Background(), prev))

	err := svc.Login(context.Background(), models.LoginCredentials{Email: "a@b.com", Password: "x"})
	require.ErrorIs(t, err, ErrSubmissionFailed)

	got, _ := store.Get()
	assert.Equal(t, prev, got)
	assert.Empty(t, nav.calls)
}

type failingPersister struct{}

func (failingPersister) Save(context.Context, models.Session) error { return errors.New("disk full") }
func (failingPersister) Load(context.Context) (models.Session, error) {
	return models.Session{}, nil
}
func (failingPersister) Clear(context.Context) error { return nil }

func TestLogin_PersistFailureIsSubmissionFailure(t *testing.T) {
	store := session.NewStore(session.WithPersister(failingPersister{}))
	nav := &fakeNav{store: store}
	svc := NewAuthService(&fakeClient{LoginRet: okResponse}, store, nav)

	err := svc.Login(context.Background(), models.LoginCredentials{Email: "a@b.com", Password: "x"})
	require.ErrorIs(t, err, ErrSubmissionFailed)
	_, ok := store.Get()
	assert.False(t, ok)
	assert.Empty(t, nav.calls)
}

func TestRegister_DoubleSubmit_OneRequest(t *testing.T) {
	fc := &fakeClient{
		RegisterRet: okResponse,
		block:       make(chan struct{}),
		entered:     make(chan struct{}, 1),
	}
	svc, store, nav, _ := setup(t, fc)

	var sets int
	store.Subscribe(func(models.Session) { sets++ })

	done := make(chan error, 1)
	go func() {
		done <- svc.Register(context.Background(), models.Registration{Email: "a@b.com"})
	}()

	select {
	case <-fc.entered:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the client")
	}
	assert.True(t, svc.Submitting())

	err := svc.Register(context.Background(), models.Registration{Email: "a@b.com"})
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(fc.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, fc.RegisterCalls)
	assert.Equal(t, 1, sets)
	assert.Equal(t, []string{navigation.RouteHome}, nav.calls)
	assert.False(t, svc.Submitting())
}

func TestSubmitting_ReleasedAfterFailure(t *testing.T) {
	fc := &fakeClient{LoginErr: client.ErrUnavailable}
	svc, _, _, _ := setup(t, fc)

	_ = svc.Login(context.Background(), models.LoginCredentials{Email: "a", Password: "b"})
	assert.False(t, svc.Submitting())

	_ = svc.Login(context.Background(), models.LoginCredentials{Email: "a", Password: "b"})
	assert.Equal(t, 2, fc.LoginCalls)
}

func TestRegister_UploadsPicture(t *testing.T) {
	fc := &fakeClient{RegisterRet: okResponse}
	up := &fakeUploader{url: "https://cdn.example/p.png"}
	svc, _, _, _ := setup(t, fc, WithUploader(up))

	require.NoError(t, svc.Register(context.Background(), models.Registration{PictureURL: "data:image/png;base64,AA=="}))
	assert.Equal(t, "data:image/png;base64,AA==", up.got)
	assert.Equal(t, "https://cdn.example/p.png", fc.LastRegister.PictureURL)
}

func TestRegister_UploadSkippedForPlainURL(t *testing.T) {
	fc := &fakeClient{RegisterRet: okResponse}
	up := &fakeUploader{url: "unused"}
	svc, _, _, _ := setup(t, fc, WithUploader(up))

	require.NoError(t, svc.Register(context.Background(), models.Registration{PictureURL: "https://x/y.png"}))
	assert.Empty(t, up.got)
	assert.Equal(t, "https://x/y.png", fc.LastRegister.PictureURL)
}

func TestRegister_UploadFailure(t *testing.T) {
	fc := &fakeClient{RegisterRet: okResponse}
	up := &fakeUploader{err: errors.New("bucket gone")}
	svc, store, nav, _ := setup(t, fc, WithUploader(up))

	err := svc.Register(context.Background(), models.Registration{PictureURL: "data:image/png;base64,AA=="})
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Zero(t, fc.RegisterCalls)
	_, ok := store.Get()
	assert.False(t, ok)
	assert.Empty(t, nav.calls)
}

func TestLogin_NavigationError(t *testing.T) {
	fc := &fakeClient{LoginRet: okResponse}
	svc, store, nav, _ := setup(t, fc)
	nav.err = navigation.ErrUnknownRoute

	err := svc.Login(context.Background(), models.LoginCredentials{Email: "a", Password: "b"})
	require.ErrorIs(t, err, navigation.ErrUnknownRoute)
	assert.NotErrorIs(t, err, ErrSubmissionFailed)
	_, ok := store.Get()
	assert.True(t, ok)
}

func TestWithLanding(t *testing.T) {
	fc := &fakeClient{LoginRet: okResponse}
	svc, _, nav, _ := setup(t, fc, WithLanding("/welcome"))

	require.NoError(t, svc.Login(context.Background(), models.LoginCredentials{Email: "a", Password: "b"}))
	assert.Equal(t, []string{"/welcome"}, nav.calls)
}

func TestLogout(t *testing.T) {
	svc, store, _, _ := setup(t, &fakeClient{})
	require.NoError(t, store.Set(context.Background(), models.Session{User: "a", Token: "t"}))

	require.NoError(t, svc.Logout(context.Background()))
	_, ok := store.Get()
	assert.False(t, ok)

	require.NoError(t, svc.Logout(context.Background()))
}

func TestPingAndClose_Delegate(t *testing.T) {
	fc := &fakeClient{PingErr: client.ErrUnavailable, CloseErr: errors.New("x")}
	svc, _, _, _ := setup(t, fc)

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.Error(t, svc.Close(context.Background()))
}

func TestLogin_CallerCancelledAfterResponse_SessionKept(t *testing.T) {
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	vault := session.NewVault(db, []byte("0123456789abcdef0123456789abcdef"))
	store := session.NewStore(session.WithPersister(vault))
	nav := &fakeNav{store: store, current: navigation.RouteLogin}

	ctx, cancel := context.WithCancel(context.Background())
	fc := &fakeClient{LoginRet: okResponse, onCall: cancel}
	svc := NewAuthService(fc, store, nav, WithLogger(newRecLogger()))

	err = svc.Login(ctx, models.LoginCredentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	require.ErrorIs(t, ctx.Err(), context.Canceled)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", got.User)
	assert.Equal(t, "t1", got.Token)

	stored, err := vault.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", stored.User)
	assert.Equal(t, "t1", stored.Token)
	assert.Equal(t, "p1", stored.Picture)
	assert.Equal(t, "u1", stored.UserID)

	assert.Equal(t, []string{navigation.RouteHome}, nav.calls)
}
