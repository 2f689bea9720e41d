package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	apppayment "github.com/minimart/backend/internal/application/payment"
)

// allowed screenshot content types
var allowedScreenshotTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// PaymentHandler handles payment verification API endpoints
type PaymentHandler struct {
	BaseHandler
	verificationService *apppayment.VerificationService
	allowStubUploads    bool
}

// NewPaymentHandler creates a new PaymentHandler. allowStubUploads relaxes
// the content-type whitelist so the stub OCR driver can accept text files
// in development.
func NewPaymentHandler(verificationService *apppayment.VerificationService, allowStubUploads bool) *PaymentHandler {
	return &PaymentHandler{
		verificationService: verificationService,
		allowStubUploads:    allowStubUploads,
	}
}

// UploadScreenshot handles POST /orders/:id/payment-screenshot
func (h *PaymentHandler) UploadScreenshot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		h.BadRequest(c, "screenshot file is required")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !h.allowStubUploads && !allowedScreenshotTypes[strings.ToLower(contentType)] {
		h.BadRequest(c, "screenshot must be an image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}

	resp, err := h.verificationService.UploadScreenshot(c.Request.Context(), apppayment.UploadScreenshotRequest{
		OrderID:     orderID,
		UserID:      userID,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Image:       image,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByOrder handles GET /orders/:id/payment
func (h *PaymentHandler) GetByOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.verificationService.GetByOrder(c.Request.Context(), userID, orderID, isAdmin(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Confirm handles POST /admin/orders/:id/confirm-payment
func (h *PaymentHandler) Confirm(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.verificationService.ConfirmPayment(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// rejectRequest is the optional body for Reject
type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /admin/orders/:id/reject-payment
func (h *PaymentHandler) Reject(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req rejectRequest
	// Body is optional; a missing or empty body means the default reason
	_ = c.ShouldBindJSON(&req)

	resp, err := h.verificationService.RejectPayment(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
