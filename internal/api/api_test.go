package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/models"
	"github.com/Techtees/civicpro/internal/storage"
)

type testServer struct {
	router *gin.Engine
	store  *storage.MemoryStore
	auth   *Auth
	admin  *models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	admin := models.NewUser("admin", hash, true)
	require.NoError(t, store.CreateUser(context.Background(), admin))

	auth := NewAuth(store, "test-secret", time.Hour)
	svc := analytics.NewService(store, logger)
	router := NewRouter(store, svc, auth, logger, RouterConfig{
		CORSOrigins:         []string{"*"},
		RatingRatePerMinute: 6000,
		RatingRateBurst:     100,
	})
	return &testServer{router: router, store: store, auth: auth, admin: admin}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, err := ts.auth.IssueToken(ts.admin)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (ts *testServer) seedPolitician(t *testing.T, name string) *models.Politician {
	t.Helper()
	p := &models.Politician{
		ID:        models.NewID(),
		Name:      name,
		Party:     models.PartyDemocratic,
		Parish:    "Kingston",
		Status:    "Current",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, ts.store.CreatePolitician(context.Background(), p))
	return p
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("valid credentials return a token and the user", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/auth/login",
			gin.H{"username": "admin", "password": "correct-horse"}, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.NotEmpty(t, body["token"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "admin", user["username"])
		_, hasHash := user["passwordHash"]
		assert.False(t, hasHash)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/auth/login",
			gin.H{"username": "admin", "password": "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user is 401", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/auth/login",
			gin.H{"username": "nobody", "password": "x"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no token is 401", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/auth/session", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/auth/session", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token returns the user", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/auth/session", nil, ts.adminToken(t))

		require.Equal(t, http.StatusOK, w.Code)
		user := decodeBody(t, w)["user"].(map[string]any)
		assert.Equal(t, "admin", user["username"])
	})
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	regular := models.NewUser("viewer", hash, false)
	require.NoError(t, ts.store.CreateUser(context.Background(), regular))
	regularToken, err := ts.auth.IssueToken(regular)
	require.NoError(t, err)

	t.Run("anonymous is 401", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/admin/stats", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/admin/stats", nil, regularToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin is allowed", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/admin/stats", nil, ts.adminToken(t))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPoliticianEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	t.Run("create politician validates input", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/politicians", gin.H{"name": ""}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var politicianID string
	t.Run("create politician", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/politicians", gin.H{
			"name":            "Alice Grant",
			"party":           "Democratic",
			"parish":          "St. Ann",
			"manifestoPoints": []string{"roads"},
		}, token)

		require.Equal(t, http.StatusCreated, w.Code)
		politician := decodeBody(t, w)["politician"].(map[string]any)
		politicianID = politician["id"].(string)
		assert.Equal(t, "Alice Grant", politician["name"])
	})

	t.Run("public listing includes the new politician with zero rating", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/politicians", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		politicians := decodeBody(t, w)["politicians"].([]any)
		require.Len(t, politicians, 1)
		entry := politicians[0].(map[string]any)
		assert.Equal(t, float64(0), entry["rating"])
		assert.Equal(t, float64(0), entry["ratingCount"])
	})

	t.Run("profile of unknown politician is 404", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/politicians/ghost", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update politician", func(t *testing.T) {
		w := ts.request(t, http.MethodPut, "/api/admin/politicians/"+politicianID,
			gin.H{"parish": "St. Mary"}, token)

		require.Equal(t, http.StatusOK, w.Code)
		politician := decodeBody(t, w)["politician"].(map[string]any)
		assert.Equal(t, "St. Mary", politician["parish"])
		assert.Equal(t, "Alice Grant", politician["name"])
	})

	t.Run("delete politician and its audit trail", func(t *testing.T) {
		w := ts.request(t, http.MethodDelete, "/api/admin/politicians/"+politicianID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.request(t, http.MethodGet, "/api/politicians/"+politicianID, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = ts.request(t, http.MethodGet, "/api/admin/logs", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		logs := decodeBody(t, w)["logs"].([]any)
		require.NotEmpty(t, logs)
		// Newest first: the delete is the most recent action.
		newest := logs[0].(map[string]any)
		assert.Equal(t, "DELETE_POLITICIAN", newest["action"])
	})
}

func TestRatingSubmissionAndModeration(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)
	p := ts.seedPolitician(t, "Bob Marsh")

	var ratingID string
	t.Run("submission creates a pending rating", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/ratings", gin.H{
			"politicianId": p.ID,
			"rating":       4.5,
			"comment":      "Delivers",
		}, "")

		require.Equal(t, http.StatusCreated, w.Code)
		rating := decodeBody(t, w)["rating"].(map[string]any)
		ratingID = rating["id"].(string)
		assert.Equal(t, string(models.RatingPending), rating["status"])
		assert.Contains(t, rating["userId"], "anon-")
	})

	t.Run("pending ratings do not affect the public profile", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/politicians/"+p.ID, nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		stats := body["ratingStats"].(map[string]any)
		assert.Equal(t, float64(0), stats["count"])
		assert.Empty(t, body["ratings"])
	})

	t.Run("moderation queue lists the rating with its politician", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/admin/ratings/pending", nil, token)

		require.Equal(t, http.StatusOK, w.Code)
		ratings := decodeBody(t, w)["ratings"].([]any)
		require.Len(t, ratings, 1)
		entry := ratings[0].(map[string]any)
		assert.Equal(t, ratingID, entry["id"])
		assert.Equal(t, p.ID, entry["politician"].(map[string]any)["id"])
	})

	t.Run("approval makes the rating public", func(t *testing.T) {
		w := ts.request(t, http.MethodPut, "/api/admin/ratings/"+ratingID,
			gin.H{"status": models.RatingApproved}, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.request(t, http.MethodGet, "/api/politicians/"+p.ID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		stats := body["ratingStats"].(map[string]any)
		assert.Equal(t, float64(4.5), stats["average"])
		assert.Equal(t, float64(1), stats["count"])
		assert.Len(t, body["ratings"], 1)
	})

	t.Run("moderating twice is 400", func(t *testing.T) {
		w := ts.request(t, http.MethodPut, "/api/admin/ratings/"+ratingID,
			gin.H{"status": models.RatingRejected}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate submission by the same user is 400", func(t *testing.T) {
		payload := gin.H{"politicianId": p.ID, "userId": "user-9", "rating": 3}
		w := ts.request(t, http.MethodPost, "/api/ratings", payload, "")
		require.Equal(t, http.StatusCreated, w.Code)

		w = ts.request(t, http.MethodPost, "/api/ratings", payload, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already submitted")
	})

	t.Run("rating for unknown politician is 404", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/ratings",
			gin.H{"politicianId": "ghost", "rating": 3}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("out of range rating is 400", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/ratings",
			gin.H{"politicianId": p.ID, "rating": 9}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPromiseAndVotingRecordEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)
	p := ts.seedPolitician(t, "Cara Duke")

	var billID string
	t.Run("create bill", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/bills", gin.H{
			"title":     "Water Act",
			"dateVoted": time.Now().Format(time.RFC3339),
		}, token)

		require.Equal(t, http.StatusCreated, w.Code)
		billID = decodeBody(t, w)["bill"].(map[string]any)["id"].(string)
	})

	t.Run("create promise for unknown politician is 404", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/promises",
			gin.H{"politicianId": "ghost", "title": "X"}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create promise defaults to in progress", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/promises",
			gin.H{"politicianId": p.ID, "title": "Fix roads"}, token)

		require.Equal(t, http.StatusCreated, w.Code)
		promise := decodeBody(t, w)["promise"].(map[string]any)
		assert.Equal(t, string(models.PromiseInProgress), promise["status"])
	})

	t.Run("voting record needs an existing bill", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/voting-records",
			gin.H{"politicianId": p.ID, "billId": "ghost", "vote": "For"}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create voting record and read it back with its bill", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/voting-records",
			gin.H{"politicianId": p.ID, "billId": billID, "vote": "For"}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		w = ts.request(t, http.MethodGet, "/api/politicians/"+p.ID+"/voting-records", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		records := decodeBody(t, w)["votingRecords"].([]any)
		require.Len(t, records, 1)
		record := records[0].(map[string]any)
		assert.Equal(t, "For", record["vote"])
		assert.Equal(t, "Water Act", record["bill"].(map[string]any)["title"])
	})

	t.Run("public promise listing", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/politicians/"+p.ID+"/promises", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		promises := decodeBody(t, w)["promises"].([]any)
		assert.Len(t, promises, 1)
	})

	t.Run("invalid vote value is 400", func(t *testing.T) {
		w := ts.request(t, http.MethodPost, "/api/admin/voting-records",
			gin.H{"politicianId": p.ID, "billId": billID, "vote": "Maybe"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestComparisonEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	p1 := ts.seedPolitician(t, "Dan Ellis")
	p2 := ts.seedPolitician(t, "Eve Fox")

	w := ts.request(t, http.MethodPost, "/api/admin/bills", gin.H{
		"title":     "Budget 2026",
		"dateVoted": time.Now().Format(time.RFC3339),
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	billID := decodeBody(t, w)["bill"].(map[string]any)["id"].(string)

	for _, vote := range []gin.H{
		{"politicianId": p1.ID, "billId": billID, "vote": "For"},
		{"politicianId": p2.ID, "billId": billID, "vote": "Against"},
	} {
		w := ts.request(t, http.MethodPost, "/api/admin/voting-records", vote, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("missing ids is 400", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/comparison", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("one resolvable id is 400", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/comparison?ids="+p1.ID+",ghost", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("two politicians compare with alignment", func(t *testing.T) {
		w := ts.request(t, http.MethodGet, "/api/comparison?ids="+p1.ID+","+p2.ID, nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Len(t, body["comparisonData"], 2)
		commonBills := body["commonBills"].([]any)
		require.Len(t, commonBills, 1)
		assert.Equal(t, false, commonBills[0].(map[string]any)["aligned"])
		assert.Equal(t, float64(0), body["overallAlignment"])
	})

	t.Run("no shared votes serializes alignment as N/A", func(t *testing.T) {
		p3 := ts.seedPolitician(t, "Gil Hart")
		p4 := ts.seedPolitician(t, "Ian Joy")

		w := ts.request(t, http.MethodGet, "/api/comparison?ids="+p3.ID+","+p4.ID, nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "N/A", decodeBody(t, w)["overallAlignment"])
	})
}

func TestRatingRateLimit(t *testing.T) {
	ts := newTestServer(t)
	p := ts.seedPolitician(t, "Kim Law")

	gin.SetMode(gin.TestMode)
	store := ts.store
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := analytics.NewService(store, logger)
	limited := NewRouter(store, svc, ts.auth, logger, RouterConfig{
		RatingRatePerMinute: 1,
		RatingRateBurst:     1,
	})

	payload, err := json.Marshal(gin.H{"politicianId": p.ID, "rating": 3})
	require.NoError(t, err)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ratings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	limited.ServeHTTP(first, req)
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/ratings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	limited.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
