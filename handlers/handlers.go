package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"grievance-processor/models"
	"grievance-processor/services"
)

// Intake is the submission pipeline the handlers drive.
type Intake interface {
	Submit(ctx context.Context, req *services.SubmissionRequest) (*services.SubmissionOutcome, error)
}

// ComplaintReader reads persisted complaints.
type ComplaintReader interface {
	GetComplaint(ctx context.Context, id int64) (*models.Complaint, error)
	ListComplaints(ctx context.Context, status, wardZone string, limit int) ([]models.Complaint, error)
}

// Handlers holds all HTTP handlers
type Handlers struct {
	intake Intake
	reader ComplaintReader
}

// NewHandlers creates a new handlers instance
func NewHandlers(intake Intake, reader ComplaintReader) *Handlers {
	return &Handlers{
		intake: intake,
		reader: reader,
	}
}

var requiredFields = []string{"full_name", "phone_number", "language", "description", "location", "ward_zone"}

// SubmitComplaint accepts a multipart complaint submission and runs the
// intake pipeline. Validation failures are rejected before any persistence
// occurs.
func (h *Handlers) SubmitComplaint(c *gin.Context) {
	form := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		value := c.PostForm(field)
		if value == "" {
			c.JSON(http.StatusBadRequest, models.SubmitResponse{
				Status:  "error",
				Message: fmt.Sprintf("%s is required", field),
			})
			return
		}
		form[field] = value
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.SubmitResponse{
			Status:  "error",
			Message: "file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.SubmitResponse{
			Status:  "error",
			Message: "could not open uploaded file",
		})
		return
	}
	defer file.Close()

	// Read the image fully before handing control to the pipeline.
	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.SubmitResponse{
			Status:  "error",
			Message: "could not read uploaded file",
		})
		return
	}

	outcome, err := h.intake.Submit(c.Request.Context(), &services.SubmissionRequest{
		FullName:      form["full_name"],
		PhoneNumber:   form["phone_number"],
		Language:      form["language"],
		Description:   form["description"],
		Location:      form["location"],
		WardZone:      form["ward_zone"],
		ImageFilename: fileHeader.Filename,
		ImageData:     imageData,
	})
	if err != nil {
		log.Errorf("Failed to process submission: %v", err)
		c.JSON(http.StatusInternalServerError, models.SubmitResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	if outcome.Status == models.StatusRejected {
		c.JSON(http.StatusOK, models.SubmitResponse{
			Status:  "rejected",
			Message: "Verification failed: no valid issue detected in the photo. Please upload a real photo of the problem.",
			ID:      outcome.ID,
		})
		return
	}

	c.JSON(http.StatusOK, models.SubmitResponse{
		Status:   "success",
		Message:  "Complaint submitted successfully",
		ID:       outcome.ID,
		Category: outcome.Category,
		Priority: outcome.Priority,
	})
}

// GetComplaint returns a single complaint by id.
func (h *Handlers) GetComplaint(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid complaint id",
		})
		return
	}

	complaint, err := h.reader.GetComplaint(c.Request.Context(), id)
	if err != nil {
		log.Errorf("Failed to get complaint %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to get complaint",
			"error":   err.Error(),
		})
		return
	}

	if complaint == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Complaint not found",
			"id":      id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

// ListComplaints returns complaints filtered by status and/or ward zone.
func (h *Handlers) ListComplaints(c *gin.Context) {
	status := c.Query("status")
	wardZone := c.Query("ward_zone")

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	complaints, err := h.reader.ListComplaints(c.Request.Context(), status, wardZone, limit)
	if err != nil {
		log.Errorf("Failed to list complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to list complaints",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(complaints),
		"complaints": complaints,
	})
}
