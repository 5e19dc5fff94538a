package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// searchRequest is accepted both as query parameters and as a JSON body.
// "position" is an alias of "keyword".
type searchRequest struct {
	Keyword   string `form:"keyword" json:"keyword"`
	Position  string `form:"position" json:"position"`
	City      string `form:"city" json:"city"`
	Kind      string `form:"kind" json:"kind"`
	MaxPages  int    `form:"max_pages" json:"max_pages"`
	StartPage int    `form:"start_page" json:"start_page"`
	EndPage   int    `form:"end_page" json:"end_page"`
}

// query builds a validated SearchQuery. A lone start_page walks one page;
// a lone end_page starts from page 1.
func (r searchRequest) query() (models.SearchQuery, error) {
	kind, err := models.ParseListingKind(r.Kind)
	if err != nil {
		return models.SearchQuery{}, apperrors.InvalidInput("invalid kind", err)
	}

	keyword := r.Keyword
	if keyword == "" {
		keyword = r.Position
	}
	q := models.SearchQuery{
		Keyword:  strings.TrimSpace(keyword),
		City:     strings.TrimSpace(r.City),
		Kind:     kind,
		MaxPages: r.MaxPages,
	}
	if r.StartPage != 0 || r.EndPage != 0 {
		start, end := r.StartPage, r.EndPage
		if start == 0 {
			start = 1
		}
		if end == 0 {
			end = start
		}
		q.Range = &models.PageRange{Start: start, End: end}
	}

	if err := q.Validate(); err != nil {
		return models.SearchQuery{}, apperrors.InvalidInput("invalid search query", err)
	}
	return q, nil
}

type searchResponse struct {
	RunID  string      `json:"run_id"`
	Status runs.Status `json:"status"`
	*models.RunResult
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorType   string `json:"error_type,omitempty"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "jobscout",
		"time":    time.Now().UTC(),
	})
}

// search runs a query synchronously and answers with its records.
func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeError(c, apperrors.InvalidInput("invalid query parameters", err))
		return
	}
	q, err := req.query()
	if err != nil {
		h.writeError(c, err)
		return
	}

	run, err := h.runs.Execute(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := searchResponse{
		RunID:     run.ID,
		Status:    run.Status,
		RunResult: run.Result,
		Error:     run.Error,
		ErrorType: run.ErrorType,
	}
	if run.ExportPath != "" {
		resp.DownloadURL = "/runs/" + run.ID + "/download"
	}
	c.JSON(statusForRun(run), resp)
}

func (h *Handler) jobDetails(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "url parameter is required",
			"error_type": apperrors.ErrTypeInvalidInput,
		})
		return
	}

	skills, err := h.skills.Skills(c.Request.Context(), url)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":             url,
		"required_skills": skills,
	})
}

func (h *Handler) createRun(c *gin.Context) {
	var req searchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			h.writeError(c, apperrors.InvalidInput("invalid request body", err))
			return
		}
	} else if err := c.ShouldBindQuery(&req); err != nil {
		h.writeError(c, apperrors.InvalidInput("invalid query parameters", err))
		return
	}
	q, err := req.query()
	if err != nil {
		h.writeError(c, err)
		return
	}

	run, err := h.runs.Submit(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Location", "/runs/"+run.ID)
	c.JSON(http.StatusAccepted, run)
}

func (h *Handler) getRun(c *gin.Context) {
	run, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) cancelRun(c *gin.Context) {
	id := c.Param("id")
	if err := h.runs.Cancel(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	run, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (h *Handler) download(c *gin.Context) {
	run, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !run.Status.Terminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "run has not finished", "status": run.Status})
		return
	}
	if run.ExportPath == "" {
		body := gin.H{"error": "no export available for this run", "status": run.Status}
		if run.ExportError != "" {
			body["export_error"] = run.ExportError
		}
		c.JSON(http.StatusNotFound, body)
		return
	}
	c.FileAttachment(run.ExportPath, filepath.Base(run.ExportPath))
}

// listings prefers the archive, which outlives the run store's TTL, and
// falls back to the stored run result.
func (h *Handler) listings(c *gin.Context) {
	id := c.Param("id")
	if h.archive != nil {
		records, err := h.archive.ListingsForRun(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, apperrors.Internal("read archived listings", err))
			return
		}
		if len(records) > 0 {
			c.JSON(http.StatusOK, gin.H{"run_id": id, "source": "archive", "records": records})
			return
		}
	}

	run, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !run.Status.Terminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "run has not finished", "status": run.Status})
		return
	}
	records := []models.ListingRecord{}
	if run.Result != nil && run.Result.Records != nil {
		records = run.Result.Records
	}
	c.JSON(http.StatusOK, gin.H{"run_id": id, "source": "store", "records": records})
}

func statusForRun(run *runs.Run) int {
	switch run.Status {
	case runs.StatusCompleted:
		return http.StatusOK
	case runs.StatusCancelled:
		return http.StatusConflict
	}
	return statusFor(apperrors.ErrorType(run.ErrorType))
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrTypeNotFound, apperrors.ErrTypeNoRecords:
		return http.StatusNotFound
	case apperrors.ErrTypeFetch:
		return http.StatusBadGateway
	case apperrors.ErrTypeRunAborted:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(c *gin.Context, err error) {
	errType := apperrors.ErrTypeInternal
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		errType = de.Type
	}

	status := statusFor(errType)
	if status >= http.StatusInternalServerError {
		h.log.Error("❌ request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"error_type": errType,
	})
}
