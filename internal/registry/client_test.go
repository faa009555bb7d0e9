package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/circuit"
)

var signingKey = []byte("registry-test-key")

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "talentgate",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(signingKey)
	require.NoError(t, err)
	return signed
}

// fakeRegistry serves the token and athlete endpoints. athleteStatus, when
// set, decides the status for the n-th athlete request (1-based).
type fakeRegistry struct {
	t *testing.T

	mu            sync.Mutex
	tokensIssued  int
	athleteCalls  int
	lastAuth      string
	received      []Record
	athleteStatus func(n int) int
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Path {
	case "/oauth/token":
		require.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "client_credentials", r.PostForm.Get("grant_type"))
		f.tokensIssued++
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: mintToken(f.t, time.Now().Add(time.Hour)),
			ExpiresIn:   3600,
		})
	case "/api/v1/athletes":
		f.athleteCalls++
		f.lastAuth = r.Header.Get("Authorization")
		if f.athleteStatus != nil {
			if status := f.athleteStatus(f.athleteCalls); status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
		}
		var rec Record
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&rec))
		f.received = append(f.received, rec)
		_ = json.NewEncoder(w).Encode(submitResponse{
			RegistryID: fmt.Sprintf("REG-%s", rec.SubjectID),
			Status:     "registered",
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type ClientSuite struct {
	suite.Suite
	registry *fakeRegistry
	server   *httptest.Server
	breaker  *circuit.Breaker
	client   *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.registry = &fakeRegistry{t: s.T()}
	s.server = httptest.NewServer(s.registry)
	s.breaker = circuit.New("registry", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	tokens := NewClientCredentials(s.server.URL+"/oauth/token", "talentgate", "secret", s.server.Client())
	s.client = NewClient(s.server.URL, tokens, time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithHTTPClient(s.server.Client()),
		WithBreaker(s.breaker),
		WithClientMetrics(NewMetrics(nil)),
	)
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) record() Record {
	return Record{SubjectID: "ath-1", Name: "Asha", Age: 16, Region: "Kerala", OverallScore: 74}
}

func (s *ClientSuite) TestSubmitSuccess() {
	receipt, err := s.client.Submit(context.Background(), s.record())
	s.Require().NoError(err)

	s.Equal("REG-ath-1", receipt.RegistryID)
	s.Equal("registered", receipt.Status)
	s.False(receipt.Synthetic)
	s.True(strings.HasPrefix(s.registry.lastAuth, "Bearer "))
	s.Require().Len(s.registry.received, 1)
	s.Equal(74, s.registry.received[0].OverallScore)
}

func (s *ClientSuite) TestTokenIsCachedAcrossCalls() {
	_, err := s.client.Submit(context.Background(), s.record())
	s.Require().NoError(err)
	_, err = s.client.Submit(context.Background(), s.record())
	s.Require().NoError(err)

	s.Equal(1, s.registry.tokensIssued)
	s.Equal(2, s.registry.athleteCalls)
}

func (s *ClientSuite) TestExpiredTokenRefreshedAndRetriedOnce() {
	s.registry.athleteStatus = func(n int) int {
		if n == 1 {
			return http.StatusUnauthorized
		}
		return http.StatusOK
	}

	receipt, err := s.client.Submit(context.Background(), s.record())
	s.Require().NoError(err)

	s.False(receipt.Synthetic)
	s.Equal(2, s.registry.tokensIssued)
	s.Equal(2, s.registry.athleteCalls)
}

func (s *ClientSuite) TestRepeatedAuthFailureIsAuthExpired() {
	s.registry.athleteStatus = func(int) int { return http.StatusUnauthorized }

	_, err := s.client.Submit(context.Background(), s.record())
	s.Require().Error(err)

	s.True(dErrors.HasCode(err, dErrors.CodeAuthExpired))
	s.Equal(2, s.registry.athleteCalls)
	s.Equal(circuit.StateClosed, s.breaker.State())
}

func (s *ClientSuite) TestOutageReturnsSyntheticReceipt() {
	s.registry.athleteStatus = func(int) int { return http.StatusServiceUnavailable }

	receipt, err := s.client.Submit(context.Background(), s.record())
	s.Require().NoError(err)

	s.True(receipt.Synthetic)
	s.Equal("ath-1", receipt.SubjectID)
	s.Equal(syntheticStatus, receipt.Status)
}

func (s *ClientSuite) TestOpenCircuitSkipsRegistry() {
	s.registry.athleteStatus = func(int) int { return http.StatusBadGateway }

	for range 2 {
		_, err := s.client.Submit(context.Background(), s.record())
		s.Require().NoError(err)
	}
	s.Equal(circuit.StateOpen, s.breaker.State())
	s.False(s.client.Healthy())

	receipt, err := s.client.Submit(context.Background(), s.record())
	s.Require().NoError(err)
	s.True(receipt.Synthetic)
	s.Equal(2, s.registry.athleteCalls)
}

func (s *ClientSuite) TestRejectionIsReturnedNotMasked() {
	s.registry.athleteStatus = func(int) int { return http.StatusBadRequest }

	receipt, err := s.client.Submit(context.Background(), s.record())
	s.Require().Error(err)

	s.False(receipt.Synthetic)
	s.Empty(receipt.RegistryID)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("exp claim wins", func(t *testing.T) {
		exp := now.Add(10 * time.Minute).Truncate(time.Second)
		assert.True(t, exp.Equal(tokenExpiry(mintToken(t, exp), now, 3600)))
	})
	t.Run("opaque token uses expires_in", func(t *testing.T) {
		assert.Equal(t, now.Add(2*time.Minute), tokenExpiry("opaque", now, 120))
	})
	t.Run("opaque token without expires_in", func(t *testing.T) {
		assert.Equal(t, now.Add(5*time.Minute), tokenExpiry("opaque", now, 0))
	})
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = StaticToken("").Token(context.Background())
	assert.Error(t, err)
}
