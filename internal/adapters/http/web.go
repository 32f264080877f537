package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pefitness/internal/adapters/ai"
	"pefitness/internal/adapters/http/middleware"
	"pefitness/internal/adapters/http/perf"
	"pefitness/internal/adapters/identity"
	accountStore "pefitness/internal/adapters/storage/account"
	"pefitness/internal/application/orchestrators"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// DefaultRateLimitPerSecond is the per-IP request budget.
const DefaultRateLimitPerSecond = 10

// Deps holds everything the HTTP layer needs. Nil optional fields disable
// the feature they serve.
type Deps struct {
	Accounts  accountStore.Store
	Sink      orchestrators.RecordSink
	Completer ai.Completer
	Verifier  identity.TokenVerifier // optional; nil disables Google Sign-In
	Collector *perf.Collector        // optional

	DeploymentAIKey string
	GoogleClientID  string

	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	SlowRequest    time.Duration
	RateLimit      int // requests per second per IP; 0 means DefaultRateLimitPerSecond

	GenerateID func() string
	Now        func() time.Time
}

// Server serves the PE department site.
type Server struct {
	deps     Deps
	sessions *middleware.SessionStore
	guard    *orchestrators.InFlightGuard
	cookies  middleware.Cookies
	pages    *pageSet
}

// NewServer parses templates and prepares the session store.
// PRE: deps.Accounts, deps.Sink and deps.Completer are non-nil
// POST: returns a ready Server or a template parse error
func NewServer(deps Deps) (*Server, error) {
	if deps.GenerateID == nil {
		deps.GenerateID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RateLimit <= 0 {
		deps.RateLimit = DefaultRateLimitPerSecond
	}
	pages, err := parsePages(templateFS)
	if err != nil {
		return nil, err
	}
	return &Server{
		deps:     deps,
		sessions: middleware.NewSessionStore(),
		guard:    orchestrators.NewInFlightGuard(),
		cookies:  middleware.Cookies{Secure: deps.SecureCookies},
		pages:    pages,
	}, nil
}

// Handler wires routes and middleware. Background sweeps stop with ctx.
func (s *Server) Handler(ctx context.Context) http.Handler {
	limiter := middleware.NewRateLimiter(ctx, s.deps.RateLimit, time.Second)

	// Timing -> RateLimit -> Visitor -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(s.routes(),
		middleware.SecurityHeaders,
		middleware.CSRF(s.deps.CSRFKey, middleware.CSRFOptions{
			Secure:         s.deps.SecureCookies,
			TrustedOrigins: s.deps.TrustedOrigins,
		}),
		middleware.Auth(s.sessions),
		middleware.Visitor(s.cookies),
		middleware.RateLimit(limiter),
		middleware.Timing(s.deps.Collector, s.deps.SlowRequest),
	)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /fitness-test", s.handleFitnessForm)
	mux.HandleFunc("POST /fitness-test", s.handleFitnessSubmit)
	mux.HandleFunc("POST /fitness-test/report", s.handleFitnessReport)
	mux.HandleFunc("POST /api/fitness/assessments", s.handleAPIAssessment)
	mux.HandleFunc("POST /api/fitness/narrative", s.handleAPINarrative)

	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /auth/google", s.handleGoogleSignIn)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)

	staffOnly := middleware.RequireRole(staffRoles...)
	mux.Handle("GET /account/password", staffOnly(http.HandlerFunc(s.handlePasswordForm)))
	mux.Handle("POST /account/password", staffOnly(http.HandlerFunc(s.handlePasswordChange)))
	mux.Handle("GET /api/ops/stats", staffOnly(http.HandlerFunc(s.handleOpsStats)))
	return mux
}
