// Package api wires the HTTP surface: public read endpoints, the rating
// submission path, admin session auth, and the admin CRUD and moderation
// endpoints. Handlers bind and delegate; domain rules live in analytics and
// error shaping lives in the errors package.
package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/errors"
	"github.com/Techtees/civicpro/internal/models"
	"github.com/Techtees/civicpro/internal/storage"
)

// Handlers serves the public endpoints.
type Handlers struct {
	store  storage.Store
	svc    *analytics.Service
	auth   *Auth
	logger *slog.Logger
}

// NewHandlers creates the public handler set.
func NewHandlers(store storage.Store, svc *analytics.Service, auth *Auth, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, svc: svc, auth: auth, logger: logger}
}

// ListPoliticians handles GET /api/politicians.
func (h *Handlers) ListPoliticians(c *gin.Context) {
	entries, err := h.svc.Directory(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"politicians": entries})
}

// GetPolitician handles GET /api/politicians/:id.
func (h *Handlers) GetPolitician(c *gin.Context) {
	profile, err := h.svc.BuildProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListPromises handles GET /api/politicians/:id/promises.
func (h *Handlers) ListPromises(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Politician(c.Request.Context(), id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	promises, err := h.store.PromisesByPolitician(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promises": promises})
}

// ListVotingRecords handles GET /api/politicians/:id/voting-records. Each
// record carries its bill; a record whose bill has been deleted keeps a nil
// bill rather than failing the listing.
func (h *Handlers) ListVotingRecords(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	if _, err := h.store.Politician(ctx, id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	records, err := h.store.VotingRecordsByPolitician(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}
	details := make([]analytics.VotingRecordDetail, 0, len(records))
	for _, record := range records {
		bill, err := h.store.Bill(ctx, record.BillID)
		if err != nil && !stderrors.Is(err, storage.ErrNotFound) {
			c.Error(err)
			return
		}
		details = append(details, analytics.VotingRecordDetail{VotingRecord: record, Bill: bill})
	}
	c.JSON(http.StatusOK, gin.H{"votingRecords": details})
}

// GetComparison handles GET /api/comparison?ids=a,b,c.
func (h *Handlers) GetComparison(c *gin.Context) {
	raw := c.Query("ids")
	if raw == "" {
		c.Error(errors.NewComparisonError())
		return
	}
	comparison, err := h.svc.BuildComparison(c.Request.Context(), strings.Split(raw, ","))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// SubmitRating handles POST /api/ratings.
func (h *Handlers) SubmitRating(c *gin.Context) {
	var in models.RatingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	rating, err := h.svc.SubmitRating(c.Request.Context(), in)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"rating":  rating,
		"message": "Rating submitted and pending moderation",
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.Error(errors.NewValidationError("Username and password are required"))
		return
	}
	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	token, err := h.auth.IssueToken(user)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout handles POST /api/auth/logout. Sessions are stateless tokens, so
// this only confirms; the client discards the token.
func (h *Handlers) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session handles GET /api/auth/session for an authenticated user.
func (h *Handlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}
