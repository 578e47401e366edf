package onboarding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ainager-onboarding/internal/application/artifact"
	"github.com/ainager-onboarding/internal/application/otp"
	"github.com/ainager-onboarding/internal/application/website"
	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/infrastructure/memstore"
	"github.com/ainager-onboarding/internal/infrastructure/pdf"
	snsinfra "github.com/ainager-onboarding/internal/infrastructure/sns"
	"github.com/ainager-onboarding/internal/infrastructure/web"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/ainager-onboarding/internal/pkg/company"
	"github.com/ainager-onboarding/internal/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const acmeHTML = `<html><head><title>Acme Widgets</title>
<meta name="description" content="Industrial widgets since 1999">
</head><body><nav>Home</nav><main>Acme builds software for widget design.
Services: custom widget design. We provide: 24/7 support.</main></body></html>`

// captureNotifier records the last delivered code per email.
type captureNotifier struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (n *captureNotifier) SendOTP(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if n.codes == nil {
		n.codes = map[string]string{}
	}
	n.codes[email] = code
	return nil
}

func (n *captureNotifier) code(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

// routedFetcher sends every request to one test server.
type routedFetcher struct {
	target string
	inner  *web.Fetcher
}

func (f routedFetcher) Fetch(ctx context.Context, _ string) (string, error) {
	return f.inner.Fetch(ctx, f.target)
}

// memTenants mimics the upsert-by-name repository.
type memTenants struct {
	mu      sync.Mutex
	byName  map[string]string
	docs    []domain.ProvisionInput
	failErr error
}

func (m *memTenants) Provision(_ context.Context, in domain.ProvisionInput) (*domain.ProvisionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	d, err := company.DomainOf(in.Email)
	if err != nil {
		return nil, err
	}
	name := company.DisplayName(d)
	if m.byName == nil {
		m.byName = map[string]string{}
	}
	tid, ok := m.byName[name]
	if !ok {
		tid = id.New()
		m.byName[name] = tid
	}
	m.docs = append(m.docs, in)
	return &domain.ProvisionResult{TenantID: tid, DocumentID: id.New(), TenantName: name, Created: !ok}, nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishTenantProvisioned(ctx context.Context, ev snsinfra.TenantProvisioned) error {
	return m.Called(ctx, ev).Error(0)
}

type stubSigner struct{}

func (stubSigner) Sign(email, d string) (string, error) { return "ticket:" + email + ":" + d, nil }

type harness struct {
	svc      *Service
	store    *memstore.Store
	clock    *clock.Manual
	notifier *captureNotifier
	tenants  *memTenants
	dir      string
}

func newHarness(t *testing.T, handler http.Handler, opts ...Option) *harness {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := memstore.New(c, 0)
	dir := t.TempDir()
	h := &harness{
		store:    store,
		clock:    c,
		notifier: &captureNotifier{},
		tenants:  &memTenants{},
		dir:      dir,
	}
	fetcher := routedFetcher{target: srv.URL, inner: web.NewFetcher(5*time.Second, 1<<20)}
	h.svc = NewService(
		otp.NewService(store, c, otp.WithHashCost(bcrypt.MinCost)),
		h.notifier,
		website.NewAnalyzer(fetcher, nil),
		artifact.NewService(pdf.NewRenderer(dir, c), nil),
		h.tenants,
		store,
		c,
		opts...,
	)
	return h
}

func siteHandler(html string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	})
}

func (h *harness) verify(t *testing.T, email string) *VerifyResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.svc.RequestOTP(ctx, email))
	res, err := h.svc.VerifyOTP(ctx, email, h.notifier.code(company.NormalizeEmail(email)))
	require.NoError(t, err)
	return res
}

func TestPipeline_EndToEnd(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()

	v := h.verify(t, "ceo@acmewidgets.com")
	assert.Equal(t, "acmewidgets.com", v.WebsiteInfo.Domain)
	assert.Equal(t, "Acme Widgets", v.WebsiteInfo.Title)
	assert.Equal(t, "Industrial widgets since 1999", v.WebsiteInfo.Description)
	assert.Len(t, v.Phases, len(VerifyPhases))
	assert.Empty(t, v.Ticket)

	res, err := h.svc.CreateTenant(ctx, "ceo@acmewidgets.com")
	require.NoError(t, err)
	assert.Equal(t, "Acmewidgets", res.TenantName)
	assert.Equal(t, "https://www.ainager.com/w/Acmewidgets", res.ShareableLink)
	assert.True(t, res.Created)
	assert.Contains(t, res.Instruction, "You are an AI assistant for Acme Widgets.")
	assert.Greater(t, res.KnowledgeBaseBytes, 0)
	assert.FileExists(t, res.ArtifactPath)
	assert.Len(t, res.Phases, len(CreatePhases))
	assert.Equal(t, v.WebsiteInfo, res.WebsiteInfo)
}

func TestRequestOTP_PublicProviderRejected(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))

	err := h.svc.RequestOTP(context.Background(), "user@gmail.com")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "company email")
	assert.Equal(t, 0, h.store.Len())
	assert.Empty(t, h.notifier.code("user@gmail.com"))
}

func TestRequestOTP_SecondRequestRateLimited(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()

	require.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))
	err := h.svc.RequestOTP(ctx, "CEO@acmewidgets.com ")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	h.clock.Advance(otp.DefaultTTL)
	assert.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))
}

func TestRequestOTP_DeliveryFailureRevokesCode(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()
	h.notifier.err = errors.New("smtp down")

	err := h.svc.RequestOTP(ctx, "ceo@acmewidgets.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)

	st, err := h.svc.Status(ctx, "ceo@acmewidgets.com")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, st.State)

	h.notifier.err = nil
	assert.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))
}

func TestPipeline_RerunKeepsOneTenant(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()

	h.verify(t, "ceo@acmewidgets.com")
	first, err := h.svc.CreateTenant(ctx, "ceo@acmewidgets.com")
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	h.verify(t, "ceo@acmewidgets.com")
	second, err := h.svc.CreateTenant(ctx, "ceo@acmewidgets.com")
	require.NoError(t, err)

	assert.Equal(t, first.TenantID, second.TenantID)
	assert.NotEqual(t, first.DocumentID, second.DocumentID)
	assert.False(t, second.Created)
	assert.Len(t, h.tenants.byName, 1)
	assert.Len(t, h.tenants.docs, 2)
	assert.NotEqual(t, first.ArtifactPath, second.ArtifactPath)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()
	require.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))

	wrong := "000000"
	if h.notifier.code("ceo@acmewidgets.com") == wrong {
		wrong = "111111"
	}
	_, err := h.svc.VerifyOTP(ctx, "ceo@acmewidgets.com", wrong)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyOTP_MalformedCode(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	_, err := h.svc.VerifyOTP(context.Background(), "ceo@acmewidgets.com", "12ab")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyOTP_CodeIsSingleUse(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()
	require.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))
	code := h.notifier.code("ceo@acmewidgets.com")

	_, err := h.svc.VerifyOTP(ctx, "ceo@acmewidgets.com", code)
	require.NoError(t, err)
	_, err = h.svc.VerifyOTP(ctx, "ceo@acmewidgets.com", code)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyOTP_ExpiredCode(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()
	require.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))
	code := h.notifier.code("ceo@acmewidgets.com")

	h.clock.Advance(otp.DefaultTTL + time.Second)
	_, err := h.svc.VerifyOTP(ctx, "ceo@acmewidgets.com", code)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyOTP_FetchFailureIsNotResumable(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	ctx := context.Background()
	require.NoError(t, h.svc.RequestOTP(ctx, "ceo@acmewidgets.com"))
	code := h.notifier.code("ceo@acmewidgets.com")

	_, err := h.svc.VerifyOTP(ctx, "ceo@acmewidgets.com", code)
	require.ErrorIs(t, err, domain.ErrUpstreamFetch)

	_, err = h.svc.VerifyOTP(ctx, "ceo@acmewidgets.com", code)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = h.svc.CreateTenant(ctx, "ceo@acmewidgets.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyOTP_UntitledSiteUsesDisplayName(t *testing.T) {
	h := newHarness(t, siteHandler(`<html><body><p>Welcome</p></body></html>`))
	v := h.verify(t, "owner@my-shop.com")
	assert.Equal(t, "My Shop", v.WebsiteInfo.Title)
}

func TestVerifyOTP_IssuesTicket(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML), WithTicketSigner(stubSigner{}))
	v := h.verify(t, "ceo@acmewidgets.com")
	assert.Equal(t, "ticket:ceo@acmewidgets.com:acmewidgets.com", v.Ticket)
}

func TestCreateTenant_WithoutAnalysis(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	_, err := h.svc.CreateTenant(context.Background(), "ceo@acmewidgets.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTenant_AnalysisExpires(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML), WithAnalysisTTL(time.Hour))
	h.verify(t, "ceo@acmewidgets.com")

	h.clock.Advance(time.Hour)
	_, err := h.svc.CreateTenant(context.Background(), "ceo@acmewidgets.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTenant_PersistenceFailure(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	h.verify(t, "ceo@acmewidgets.com")
	h.tenants.failErr = fmt.Errorf("commit: %w", domain.ErrPersistence)

	_, err := h.svc.CreateTenant(context.Background(), "ceo@acmewidgets.com")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	st, err := h.svc.Status(context.Background(), "ceo@acmewidgets.com")
	require.NoError(t, err)
	assert.Equal(t, StateVerified, st.State)
}

func TestCreateTenant_PublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishTenantProvisioned", mock.Anything, mock.MatchedBy(func(ev snsinfra.TenantProvisioned) bool {
		return ev.TenantName == "Acmewidgets" && ev.Email == "ceo@acmewidgets.com" && ev.Created
	})).Return(nil).Once()

	h := newHarness(t, siteHandler(acmeHTML), WithPublisher(pub))
	h.verify(t, "ceo@acmewidgets.com")
	_, err := h.svc.CreateTenant(context.Background(), "ceo@acmewidgets.com")
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestCreateTenant_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishTenantProvisioned", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	h := newHarness(t, siteHandler(acmeHTML), WithPublisher(pub))
	h.verify(t, "ceo@acmewidgets.com")
	_, err := h.svc.CreateTenant(context.Background(), "ceo@acmewidgets.com")
	assert.NoError(t, err)
}

func TestStatus_Transitions(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	ctx := context.Background()
	email := "ceo@acmewidgets.com"

	st, err := h.svc.Status(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, "acmewidgets.com", st.Domain)

	require.NoError(t, h.svc.RequestOTP(ctx, email))
	st, _ = h.svc.Status(ctx, email)
	assert.Equal(t, StateOTPRequested, st.State)

	_, err = h.svc.VerifyOTP(ctx, email, h.notifier.code(email))
	require.NoError(t, err)
	st, _ = h.svc.Status(ctx, email)
	assert.Equal(t, StateVerified, st.State)

	_, err = h.svc.CreateTenant(ctx, email)
	require.NoError(t, err)
	st, _ = h.svc.Status(ctx, email)
	assert.Equal(t, StateProvisioned, st.State)
	require.NotNil(t, st.ProvisionedAt)
	assert.True(t, h.clock.Now().Equal(*st.ProvisionedAt))
}

func TestStatus_InvalidEmail(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML))
	_, err := h.svc.Status(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestShareableLink_EscapesName(t *testing.T) {
	h := newHarness(t, siteHandler(acmeHTML), WithServiceDomain("app.example.com"))
	assert.Equal(t, "https://app.example.com/w/My%20Shop", h.svc.ShareableLink("My Shop"))
}
