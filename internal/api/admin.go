package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/errors"
	"github.com/Techtees/civicpro/internal/models"
	"github.com/Techtees/civicpro/internal/storage"
)

// Audit log action labels.
const (
	actionCreatePolitician   = "CREATE_POLITICIAN"
	actionUpdatePolitician   = "UPDATE_POLITICIAN"
	actionDeletePolitician   = "DELETE_POLITICIAN"
	actionCreatePromise      = "CREATE_PROMISE"
	actionUpdatePromise      = "UPDATE_PROMISE"
	actionDeletePromise      = "DELETE_PROMISE"
	actionCreateBill         = "CREATE_BILL"
	actionDeleteBill         = "DELETE_BILL"
	actionCreateVotingRecord = "CREATE_VOTING_RECORD"
	actionDeleteVotingRecord = "DELETE_VOTING_RECORD"
	actionApproveRating      = "APPROVE_RATING"
	actionRejectRating       = "REJECT_RATING"
)

// AdminHandlers serves the admin endpoints. Every mutation writes an audit
// log entry attributed to the authenticated admin.
type AdminHandlers struct {
	store  storage.Store
	svc    *analytics.Service
	logger *slog.Logger
}

// NewAdminHandlers creates the admin handler set.
func NewAdminHandlers(store storage.Store, svc *analytics.Service, logger *slog.Logger) *AdminHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandlers{store: store, svc: svc, logger: logger}
}

// audit records an admin action. A failed write is logged but does not fail
// the request that triggered it.
func (h *AdminHandlers) audit(c *gin.Context, action string, details map[string]any) {
	user := currentUser(c)
	if user == nil {
		return
	}
	entry := models.NewAdminLog(user.ID, action, details)
	if err := h.store.AppendAdminLog(c.Request.Context(), entry); err != nil {
		h.logger.Error("Failed to write audit log entry", "action", action, "error", err)
	}
}

// CreatePolitician handles POST /api/admin/politicians.
func (h *AdminHandlers) CreatePolitician(c *gin.Context) {
	var in models.PoliticianInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	if problems := in.Validate(); problems != nil {
		c.Error(errors.NewValidationErrorWithMap(problems))
		return
	}
	politician := in.Politician()
	if err := h.store.CreatePolitician(c.Request.Context(), politician); err != nil {
		c.Error(err)
		return
	}
	h.audit(c, actionCreatePolitician, map[string]any{"politicianId": politician.ID, "name": politician.Name})
	c.JSON(http.StatusCreated, gin.H{"politician": politician})
}

// UpdatePolitician handles PUT /api/admin/politicians/:id.
func (h *AdminHandlers) UpdatePolitician(c *gin.Context) {
	var patch models.PoliticianPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	if problems := patch.Validate(); problems != nil {
		c.Error(errors.NewValidationErrorWithMap(problems))
		return
	}
	id := c.Param("id")
	politician, err := h.store.Politician(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	patch.Apply(politician)
	if err := h.store.UpdatePolitician(c.Request.Context(), politician); err != nil {
		c.Error(err)
		return
	}
	h.audit(c, actionUpdatePolitician, map[string]any{"politicianId": id})
	c.JSON(http.StatusOK, gin.H{"politician": politician})
}

// DeletePolitician handles DELETE /api/admin/politicians/:id. Promises,
// voting records and ratings of the politician are removed with them.
func (h *AdminHandlers) DeletePolitician(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeletePolitician(c.Request.Context(), id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	h.audit(c, actionDeletePolitician, map[string]any{"politicianId": id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreatePromise handles POST /api/admin/promises.
func (h *AdminHandlers) CreatePromise(c *gin.Context) {
	var in models.PromiseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	if problems := in.Validate(); problems != nil {
		c.Error(errors.NewValidationErrorWithMap(problems))
		return
	}
	if _, err := h.store.Politician(c.Request.Context(), in.PoliticianID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	promise := in.Promise()
	if err := h.store.CreatePromise(c.Request.Context(), promise); err != nil {
		c.Error(err)
		return
	}
	h.audit(c, actionCreatePromise, map[string]any{"promiseId": promise.ID, "politicianId": promise.PoliticianID})
	c.JSON(http.StatusCreated, gin.H{"promise": promise})
}

// UpdatePromise handles PUT /api/admin/promises/:id.
func (h *AdminHandlers) UpdatePromise(c *gin.Context) {
	var patch models.PromisePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	if problems := patch.Validate(); problems != nil {
		c.Error(errors.NewValidationErrorWithMap(problems))
		return
	}
	id := c.Param("id")
	promise, err := h.store.Promise(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Promise"))
			return
		}
		c.Error(err)
		return
	}
	patch.Apply(promise)
	if err := h.store.UpdatePromise(c.Request.Context(), promise); err != nil {
		c.Error(err)
		return
	}
	h.audit(c, actionUpdatePromise, map[string]any{"promiseId": id})
	c.JSON(http.StatusOK, gin.H{"promise": promise})
}

// DeletePromise handles DELETE /api/admin/promises/:id.
func (h *AdminHandlers) DeletePromise(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeletePromise(c.Request.Context(), id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Promise"))
			return
		}
		c.Error(err)
		return
	}
	h.audit(c, actionDeletePromise, map[string]any{"promiseId": id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateBill handles POST /api/admin/bills.
func (h *AdminHandlers) CreateBill(c *gin.Context) {
	var in models.BillInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	if problems := in.Validate(); problems != nil {
		c.Error(errors.NewValidationErrorWithMap(problems))
		return
	}
	bill := in.Bill()
	if err := h.store.CreateBill(c.Request.Context(), bill); err != nil {
		c.Error(err)
		return
	}
	h.audit(c, actionCreateBill, map[string]any{"billId": bill.ID, "title": bill.Title})
	c.JSON(http.StatusCreated, gin.H{"bill": bill})
}

// ListBills handles GET /api/admin/bills.
func (h *AdminHandlers) ListBills(c *gin.Context) {
	bills, err := h.store.Bills(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

// DeleteBill handles DELETE /api/admin/bills/:id.
func (h *AdminHandlers) DeleteBill(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteBill(c.Request.Context(), id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Bill"))
			return
		}
		c.Error(err)
		return
	}
	h.audit(c, actionDeleteBill, map[string]any{"billId": id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateVotingRecord handles POST /api/admin/voting-records.
func (h *AdminHandlers) CreateVotingRecord(c *gin.Context) {
	var in models.VotingRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	if problems := in.Validate(); problems != nil {
		c.Error(errors.NewValidationErrorWithMap(problems))
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.Politician(ctx, in.PoliticianID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Politician"))
			return
		}
		c.Error(err)
		return
	}
	if _, err := h.store.Bill(ctx, in.BillID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Bill"))
			return
		}
		c.Error(err)
		return
	}
	record := in.VotingRecord()
	if err := h.store.CreateVotingRecord(ctx, record); err != nil {
		c.Error(err)
		return
	}
	h.audit(c, actionCreateVotingRecord, map[string]any{
		"votingRecordId": record.ID,
		"politicianId":   record.PoliticianID,
		"billId":         record.BillID,
	})
	c.JSON(http.StatusCreated, gin.H{"votingRecord": record})
}

// DeleteVotingRecord handles DELETE /api/admin/voting-records/:id.
func (h *AdminHandlers) DeleteVotingRecord(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteVotingRecord(c.Request.Context(), id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Voting record"))
			return
		}
		c.Error(err)
		return
	}
	h.audit(c, actionDeleteVotingRecord, map[string]any{"votingRecordId": id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListPendingRatings handles GET /api/admin/ratings/pending.
func (h *AdminHandlers) ListPendingRatings(c *gin.Context) {
	pending, err := h.svc.PendingRatings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": pending})
}

type moderateRequest struct {
	Status models.RatingStatus `json:"status"`
}

// ModerateRating handles PUT /api/admin/ratings/:id.
func (h *AdminHandlers) ModerateRating(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("Invalid request body"))
		return
	}
	id := c.Param("id")
	rating, err := h.svc.ModerateRating(c.Request.Context(), id, req.Status)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			c.Error(errors.NewNotFoundError("Rating"))
			return
		}
		c.Error(err)
		return
	}
	action := actionApproveRating
	if rating.Status == models.RatingRejected {
		action = actionRejectRating
	}
	h.audit(c, action, map[string]any{"ratingId": id, "politicianId": rating.PoliticianID})
	c.JSON(http.StatusOK, gin.H{"rating": rating})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandlers) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListLogs handles GET /api/admin/logs, newest first.
func (h *AdminHandlers) ListLogs(c *gin.Context) {
	logs, err := h.store.AdminLogs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
