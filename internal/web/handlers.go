package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

const maxReasonSize = 4 << 10 // 4KB

type setEtaRequest struct {
	ListID  string   `json:"listId"`
	UserID  string   `json:"userId"`
	Eta     *apiTime `json:"eta"`
	DueDate *apiTime `json:"dueDate"`
	Reason  string   `json:"reason"`
}

type extendEtaRequest struct {
	UserID  string   `json:"userId"`
	NewEta  *apiTime `json:"newEta"`
	DueDate *apiTime `json:"dueDate"`
	Reason  string   `json:"reason"`
}

type completeRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSetEta(c *gin.Context) {
	taskID := c.Param("id")

	var req setEtaRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Eta == nil || req.Eta.IsZero() {
		badRequest(c, "eta is required")
		return
	}
	if req.ListID == "" || req.UserID == "" {
		badRequest(c, "listId and userId are required")
		return
	}
	if len(req.Reason) > maxReasonSize {
		badRequest(c, "reason exceeds maximum size of 4KB")
		return
	}

	rec, err := s.service.SetEta(c.Request.Context(), core.SetEtaRequest{
		TaskID:  taskID,
		ListID:  req.ListID,
		UserID:  req.UserID,
		Eta:     req.Eta.Time,
		DueDate: req.DueDate.timePtr(),
		Reason:  req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    viewFromRecord(rec, s.clock.Now(), s.settings.GraceHours),
	})
}

func (s *Server) handleExtendEta(c *gin.Context) {
	taskID := c.Param("id")

	var req extendEtaRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.NewEta == nil || req.NewEta.IsZero() {
		badRequest(c, "newEta is required")
		return
	}
	if req.UserID == "" {
		badRequest(c, "userId is required")
		return
	}
	if len(req.Reason) > maxReasonSize {
		badRequest(c, "reason exceeds maximum size of 4KB")
		return
	}

	rec, err := s.service.ExtendEta(c.Request.Context(), core.ExtendEtaRequest{
		TaskID:  taskID,
		UserID:  req.UserID,
		NewEta:  req.NewEta.Time,
		DueDate: req.DueDate.timePtr(),
		Reason:  req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    viewFromRecord(rec, s.clock.Now(), s.settings.GraceHours),
	})
}

func (s *Server) handleComplete(c *gin.Context) {
	taskID := c.Param("id")

	var req completeRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	if _, err := s.service.MarkComplete(c.Request.Context(), taskID, req.UserID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task completed",
	})
}

func (s *Server) handleGetAccountability(c *gin.Context) {
	taskID := c.Param("id")

	rec, err := s.service.Get(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// No record yet is a normal state for the client, not a failure.
			c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    viewFromRecord(rec, s.clock.Now(), s.settings.GraceHours),
	})
}

func (s *Server) handleSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"maxStrikes": s.settings.MaxStrikes,
			"graceHours": s.settings.GraceHours,
		},
	})
}

// Error mapping

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
		"code":    "BAD_REQUEST",
	})
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"success": false,
		"error":   err.Error(),
		"code":    codeForError(err),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrPastEta),
		errors.Is(err, core.ErrExceedsDueDate),
		errors.Is(err, core.ErrReasonTooShort):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAlreadySet),
		errors.Is(err, core.ErrMaxStrikesReached),
		errors.Is(err, core.ErrAlreadyCompleted),
		errors.Is(err, core.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func codeForError(err error) string {
	switch {
	case errors.Is(err, core.ErrPastEta):
		return "PAST_ETA"
	case errors.Is(err, core.ErrExceedsDueDate):
		return "EXCEEDS_DUE_DATE"
	case errors.Is(err, core.ErrReasonTooShort):
		return "REASON_TOO_SHORT"
	case errors.Is(err, core.ErrAlreadySet):
		return "ALREADY_SET"
	case errors.Is(err, core.ErrMaxStrikesReached):
		return "MAX_STRIKES_REACHED"
	case errors.Is(err, core.ErrAlreadyCompleted):
		return "ALREADY_COMPLETED"
	case errors.Is(err, core.ErrConcurrentModification):
		return "CONCURRENT_MODIFICATION"
	case errors.Is(err, core.ErrNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}
