package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
	"github.com/noah-isme/kaizen-portal-api/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, req dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error)
	Get(ctx context.Context, id string, actor models.Actor) (*dto.SubmissionResponse, error)
	List(ctx context.Context, query dto.SubmissionQuery, actor models.Actor) (*dto.SubmissionListResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateSubmissionRequest, actor models.Actor) (*dto.SubmissionResponse, error)
	Decide(ctx context.Context, id string, req dto.DecisionRequest, actor models.Actor) (*dto.SubmissionResponse, error)
	AttachImage(ctx context.Context, id string, data []byte) (*dto.ImageUploadResponse, error)
}

type formPrinter interface {
	PrintableForm(ctx context.Context, id string, actor models.Actor) ([]byte, string, error)
}

const imageFormField = "image"

// SubmissionHandler exposes the operator form and the admin review endpoints.
type SubmissionHandler struct {
	submissions   submissionService
	printer       formPrinter
	maxImageBytes int64
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(submissions submissionService, printer formPrinter, maxImageBytes int64) *SubmissionHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 3 << 20
	}
	return &SubmissionHandler{submissions: submissions, printer: printer, maxImageBytes: maxImageBytes}
}

// Create godoc
// @Summary Submit a Kaizen improvement
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubmissionRequest true "Kaizen form"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.submissions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// List godoc
// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Param search query string false "Search operator name, title or ID; department too in the global view"
// @Param status query string false "Pending, Approved or Rejected"
// @Param department query string false "Department"
// @Param plant query string false "Plant"
// @Param amountRange query string false "upto_1l, 1l_3l, 3l_10l or above_10l"
// @Param approvalLevel query string false "Approval level"
// @Param dateWindow query string false "7d, 30d or 90d"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := intQuery(c, "page", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	size, err := intQuery(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.submissions.List(c.Request.Context(), dto.SubmissionQuery{
		Filter:   filterFromQuery(c),
		Page:     page,
		PageSize: size,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Get godoc
// @Summary Get submission detail
// @Tags Submissions
// @Produce json
// @Param id path string true "Kaizen ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.submissions.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Update godoc
// @Summary Edit a submission inside the edit window
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Kaizen ID"
// @Param payload body dto.UpdateSubmissionRequest true "Edited form"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id} [put]
func (h *SubmissionHandler) Update(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.submissions.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Decide godoc
// @Summary Approve or reject a pending submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Kaizen ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/decision [post]
func (h *SubmissionHandler) Decide(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.submissions.Decide(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// UploadImage godoc
// @Summary Attach a compressed image to a submission
// @Tags Submissions
// @Accept multipart/form-data
// @Accept image/jpeg
// @Accept image/png
// @Accept image/webp
// @Produce json
// @Param id path string true "Kaizen ID"
// @Param image formData file false "Image file"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /submissions/{id}/image [post]
func (h *SubmissionHandler) UploadImage(c *gin.Context) {
	data, err := h.readImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.submissions.AttachImage(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Print godoc
// @Summary Download the printable Kaizen form
// @Tags Submissions
// @Produce application/pdf
// @Param id path string true "Kaizen ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /submissions/{id}/print [get]
func (h *SubmissionHandler) Print(c *gin.Context) {
	if h.printer == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.printer.PrintableForm(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, true)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", payload)
}

// readImage accepts either a multipart "image" field or a raw image body.
// One byte past the limit is read so the service can reject oversize files.
func (h *SubmissionHandler) readImage(c *gin.Context) ([]byte, error) {
	limit := h.maxImageBytes + 1
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(imageFormField)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrBadRequest, "image field is required")
		}
		file, err := header.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, "unable to read image")
		}
		defer file.Close() //nolint:errcheck
		return readLimited(file, limit)
	}
	return readLimited(c.Request.Body, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, "unable to read image")
	}
	return data, nil
}
