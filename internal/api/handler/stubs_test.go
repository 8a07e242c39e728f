package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/api/middleware"
	"github.com/taskdesk/taskdesk/internal/api/view"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, username, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn        func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubTaskService struct {
	listFn   func(ctx context.Context, userID string) ([]*domain.Task, error)
	getFn    func(ctx context.Context, userID, id string) (*domain.Task, error)
	createFn func(ctx context.Context, userID string, in ports.TaskInput) (*domain.Task, error)
	updateFn func(ctx context.Context, userID, id string, in ports.TaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, userID, id string) error
	moveFn   func(ctx context.Context, userID, id string, dir domain.MoveDirection) (bool, error)
}

func (s *stubTaskService) List(ctx context.Context, userID string) ([]*domain.Task, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

func (s *stubTaskService) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return s.getFn(ctx, userID, id)
}

func (s *stubTaskService) Create(ctx context.Context, userID string, in ports.TaskInput) (*domain.Task, error) {
	return s.createFn(ctx, userID, in)
}

func (s *stubTaskService) Update(ctx context.Context, userID, id string, in ports.TaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, userID, id, in)
}

func (s *stubTaskService) Delete(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

func (s *stubTaskService) Move(ctx context.Context, userID, id string, dir domain.MoveDirection) (bool, error) {
	return s.moveFn(ctx, userID, id, dir)
}

type stubReportService struct {
	generateFn func(ctx context.Context, userID string, ids []string) (string, error)
}

func (s *stubReportService) Generate(ctx context.Context, userID string, ids []string) (string, error) {
	return s.generateFn(ctx, userID, ids)
}

type stubChatService struct {
	sendFn    func(ctx context.Context, userID, text string) (*ports.ChatExchange, error)
	historyFn func(ctx context.Context, userID string) ([]*domain.Message, error)
	deleteFn  func(ctx context.Context, userID, id string) error
}

func (s *stubChatService) Send(ctx context.Context, userID, text string) (*ports.ChatExchange, error) {
	return s.sendFn(ctx, userID, text)
}

func (s *stubChatService) History(ctx context.Context, userID string) ([]*domain.Message, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID)
}

func (s *stubChatService) DeleteMessage(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

// recordingRenderer captures the last rendered page instead of executing
// templates.
type recordingRenderer struct {
	name string
	page view.Page
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	r.name = name
	r.page, _ = data.(view.Page)
	_, err := io.WriteString(w, name)
	return err
}

// webFixture is an echo instance with a cookie session store, the
// validator and a recording renderer.
type webFixture struct {
	e        *echo.Echo
	store    *sessions.CookieStore
	sessions *Sessions
	renderer *recordingRenderer
}

func newWebFixture() *webFixture {
	e := echo.New()
	e.Validator = NewValidator()
	r := &recordingRenderer{}
	e.Renderer = r
	return &webFixture{
		e:        e,
		store:    sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		sessions: NewSessions("test_session", time.Hour, false, zerolog.Nop()),
		renderer: r,
	}
}

// form builds a POST request with url-encoded values.
func form(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// serve runs h for req as userID ("" for anonymous) behind the session
// middleware. Path parameters are given as name/value pairs.
func (f *webFixture) serve(t *testing.T, h echo.HandlerFunc, req *http.Request, userID string, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		values := append(c.ParamValues(), params[i+1])
		c.SetParamNames(append(c.ParamNames(), params[i])...)
		c.SetParamValues(values...)
	}
	if userID != "" {
		middleware.SetIdentity(c, userID, "alice")
	}
	err := session.Middleware(f.store)(h)(c)
	return rec, err
}

// flashes decodes the flash messages of the last session cookie written.
func (f *webFixture) flashes(t *testing.T, rec *httptest.ResponseRecorder) []view.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var last *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "test_session" {
			last = ck
		}
	}
	if last == nil {
		return nil
	}
	req.AddCookie(last)
	sess, err := f.store.Get(req, "test_session")
	if err != nil {
		t.Fatalf("read session: %v", err)
	}
	var out []view.Flash
	for _, raw := range sess.Flashes() {
		out = append(out, raw.(view.Flash))
	}
	return out
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != to {
		t.Fatalf("expected redirect to %s, got %d %q", to, rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
