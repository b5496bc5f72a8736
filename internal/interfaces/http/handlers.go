package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/application/service"
	"github.com/claimdesk/claimdesk/internal/domain/approval"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
	"github.com/claimdesk/claimdesk/internal/report"
	"github.com/claimdesk/claimdesk/pkg/utils"
)

// maxReceiptSize caps receipt uploads at 10 MiB
const maxReceiptSize = 10 << 20

// Handlers contains all HTTP request handlers
type Handlers struct {
	claimService        service.ClaimService
	notificationService service.NotificationService
	receiptService      service.ReceiptService
	fileStore           port.FileStore
	exporter            *report.Exporter
	logger              Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	claimService service.ClaimService,
	notificationService service.NotificationService,
	receiptService service.ReceiptService,
	fileStore port.FileStore,
	exporter *report.Exporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		claimService:        claimService,
		notificationService: notificationService,
		receiptService:      receiptService,
		fileStore:           fileStore,
		exporter:            exporter,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// DecisionRequest is the body for POST /api/claims/:id/decision
type DecisionRequest struct {
	Status entity.ClaimStatus `json:"status" binding:"required"`
}

// MessageRequest is the body for POST /api/claims/:id/messages
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// NotificationsResponse bundles a user's notifications with the badge count
type NotificationsResponse struct {
	Notifications []*entity.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// ReceiptUploadResponse is returned by POST /api/receipts/upload
type ReceiptUploadResponse struct {
	URL string `json:"url"`
}

// identity extracts the caller identity from request headers
func identity(c *gin.Context) entity.Identity {
	return entity.Identity{
		ID:   c.GetHeader("X-User-Id"),
		Name: c.GetHeader("X-User-Name"),
	}
}

// respondError maps service errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, port.ErrClaimNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "claim not found"})
	case errors.Is(err, port.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "notification not found"})
	case errors.Is(err, approval.ErrApproverNotFound):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "approver not assigned to this claim"})
	case errors.Is(err, approval.ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "decision must be Approved or Rejected"})
	default:
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// SubmitClaim handles POST /api/claims
func (h *Handlers) SubmitClaim(c *gin.Context) {
	caller := identity(c)
	if err := utils.ValidateIdentity(caller); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	var claim entity.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		h.logger.Error("Invalid claim payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid claim payload"})
		return
	}

	if err := utils.ValidateClaim(&claim); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	created, err := h.claimService.SubmitClaim(c.Request.Context(), &claim, caller)
	if err != nil {
		h.logger.Error("Failed to submit claim", "error", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// EditClaim handles PUT /api/claims/:id
func (h *Handlers) EditClaim(c *gin.Context) {
	var claim entity.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		h.logger.Error("Invalid claim payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid claim payload"})
		return
	}
	claim.ID = c.Param("id")

	if err := utils.ValidateClaim(&claim); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	updated, err := h.claimService.EditClaim(c.Request.Context(), &claim)
	if err != nil {
		h.logger.Error("Failed to edit claim", "error", err, "claim_id", claim.ID)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// RecordDecision handles POST /api/claims/:id/decision
func (h *Handlers) RecordDecision(c *gin.Context) {
	caller := identity(c)
	if err := utils.ValidateIdentity(caller); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "status is required"})
		return
	}

	claim, err := h.claimService.RecordApproverDecision(c.Request.Context(), c.Param("id"), caller.ID, caller.Name, req.Status)
	if err != nil {
		h.logger.Error("Failed to record decision", "error", err, "claim_id", c.Param("id"))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// AddChatMessage handles POST /api/claims/:id/messages
func (h *Handlers) AddChatMessage(c *gin.Context) {
	caller := identity(c)
	if err := utils.ValidateIdentity(caller); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "content is required"})
		return
	}

	claim, err := h.claimService.AddChatMessage(c.Request.Context(), c.Param("id"), caller, req.Content)
	if err != nil {
		h.logger.Error("Failed to add chat message", "error", err, "claim_id", c.Param("id"))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// MarkViewed handles POST /api/claims/:id/viewed
func (h *Handlers) MarkViewed(c *gin.Context) {
	caller := identity(c)
	if caller.ID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user id is required"})
		return
	}

	claim, err := h.claimService.MarkViewed(c.Request.Context(), c.Param("id"), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	claim, err := h.claimService.GetClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// ListClaims handles GET /api/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	caller := identity(c)
	if caller.ID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user id is required"})
		return
	}

	claims, err := h.claimService.ListClaimsForUser(c.Request.Context(), caller.ID)
	if err != nil {
		h.logger.Error("Failed to list claims", "error", err, "user_id", caller.ID)
		h.respondError(c, err)
		return
	}

	if claims == nil {
		claims = []*entity.Claim{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claims})
}

// ExportClaims handles GET /api/claims/export
func (h *Handlers) ExportClaims(c *gin.Context) {
	caller := identity(c)
	if caller.ID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user id is required"})
		return
	}

	claims, err := h.claimService.ListClaimsForUser(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	fileName := fmt.Sprintf("claims-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.exporter.Export(c.Writer, claims); err != nil {
		h.logger.Error("Failed to export claims", "error", err, "user_id", caller.ID)
		c.Status(http.StatusInternalServerError)
		return
	}
}

// UploadReceipt handles POST /api/receipts/upload. The returned URL is
// meant to go into the claim's proof_urls on submit or edit. When no
// claim_id is supplied the file is stored under a fresh upload id.
func (h *Handlers) UploadReceipt(c *gin.Context) {
	content, header, ok := h.readUpload(c)
	if !ok {
		return
	}

	claimID := c.PostForm("claim_id")
	if claimID == "" {
		claimID = uuid.NewString()
	}

	url, err := h.fileStore.SaveReceipt(c.Request.Context(), claimID, header.Filename, content)
	if err != nil {
		h.logger.Error("Failed to store receipt", "error", err, "file_name", header.Filename)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to store receipt"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: ReceiptUploadResponse{URL: url}})
}

// ScanReceipt handles POST /api/receipts/scan. Extraction is best
// effort: an unreadable receipt yields empty autofill data, not an error.
func (h *Handlers) ScanReceipt(c *gin.Context) {
	content, header, ok := h.readUpload(c)
	if !ok {
		return
	}

	mimeType := header.Header.Get("Content-Type")
	data := h.receiptService.ScanReceipt(c.Request.Context(), content, mimeType)
	if data == nil {
		data = &entity.ReceiptData{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// readUpload pulls the "file" part out of a multipart request
func (h *Handlers) readUpload(c *gin.Context) ([]byte, *multipart.FileHeader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "file is required"})
		return nil, nil, false
	}
	if header.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "file too large"})
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to read file"})
		return nil, nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to read file"})
		return nil, nil, false
	}

	return content, header, true
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	caller := identity(c)
	if caller.ID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user id is required"})
		return
	}

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	unread, err := h.notificationService.CountUnread(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if notifications == nil {
		notifications = []*entity.Notification{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: NotificationsResponse{
			Notifications: notifications,
			UnreadCount:   unread,
		},
	})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	notification, err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notification})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	caller := identity(c)
	if caller.ID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user id is required"})
		return
	}

	notifications, err := h.notificationService.MarkAllRead(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if notifications == nil {
		notifications = []*entity.Notification{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}
