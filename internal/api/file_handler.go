package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"datadesk/adapters/excel"
	"datadesk/domain/core"
	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"
	"datadesk/internal/usage"

	"github.com/gin-gonic/gin"
)

// FileService is the pipeline surface the handlers need
type FileService interface {
	Ingest(ctx context.Context, content []byte, filename string, owner core.ID) (*dataset.UploadedFile, error)
	Get(ctx context.Context, fileID, owner core.ID) (*dataset.UploadedFile, error)
	List(ctx context.Context, owner core.ID, limit, offset int) ([]*dataset.UploadedFile, error)
	Delete(ctx context.Context, fileID, owner core.ID) error
	Preview(ctx context.Context, fileID, owner core.ID, limit int) (*dataset.PreviewResult, error)
	Analyze(ctx context.Context, fileID, owner core.ID) (*dataset.AnalysisResult, error)
	Clean(ctx context.Context, fileID, owner core.ID) (*dataset.Table, error)
	AdvancedClean(ctx context.Context, fileID, owner core.ID) (*dataset.AdvancedCleanResult, error)
	Quality(ctx context.Context, fileID, owner core.ID) (*dataset.QualityReport, error)
	Ask(ctx context.Context, fileID, owner core.ID, question string) (*dataset.FileResult, error)
	Summarize(ctx context.Context, fileID, owner core.ID) (*dataset.FileResult, error)
	History(ctx context.Context, owner core.ID, limit, offset int) ([]*dataset.FileResult, error)
	FileHistory(ctx context.Context, fileID, owner core.ID) ([]*dataset.FileResult, error)
	DefaultPreviewLimit() int
}

// UsageReporter reports plan usage
type UsageReporter interface {
	GetSummary(ctx context.Context, owner core.ID) (*usage.Summary, error)
}

// multipartOverhead is allowed on top of the upload ceiling for form
// boundaries and headers
const multipartOverhead = 1 << 20

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// FileHandler serves the file endpoints
type FileHandler struct {
	files          FileService
	usage          UsageReporter
	maxUploadBytes int64
	exports        map[string]tableExport
}

// tableExport renders a table as a downloadable file
type tableExport struct {
	contentType string
	filename    string
	write       func(io.Writer, *dataset.Table) error
}

// NewFileHandler creates a new file handler
func NewFileHandler(files FileService, usage UsageReporter, maxUploadBytes int64) *FileHandler {
	return &FileHandler{
		files:          files,
		usage:          usage,
		maxUploadBytes: maxUploadBytes,
		exports: map[string]tableExport{
			"csv":  {"text/csv; charset=utf-8", "cleaned.csv", excel.WriteCSV},
			"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "cleaned.xlsx", excel.WriteXLSX},
		},
	}
}

// Register mounts the routes on an authenticated group
func (h *FileHandler) Register(r gin.IRoutes) {
	r.POST("/files", h.Upload)
	r.GET("/files", h.List)
	r.GET("/files/:id", h.Get)
	r.DELETE("/files/:id", h.Delete)
	r.GET("/files/:id/preview", h.Preview)
	r.GET("/files/:id/analysis", h.Analyze)
	r.GET("/files/:id/clean", h.Clean)
	r.POST("/files/:id/advanced-clean", h.AdvancedClean)
	r.GET("/files/:id/quality", h.Quality)
	r.POST("/files/:id/ask", h.Ask)
	r.POST("/files/:id/summary", h.Summarize)
	r.GET("/files/:id/history", h.FileHistory)
	r.GET("/history", h.History)
	r.GET("/usage", h.Usage)
}

// Upload ingests a multipart "file" field
func (h *FileHandler) Upload(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperrors.SizeExceeded(c.Request.ContentLength, h.maxUploadBytes))
			return
		}
		respondError(c, apperrors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	// One byte past the ceiling is enough for the service to reject it.
	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respondError(c, apperrors.InvalidInput("failed to read uploaded file"))
		return
	}

	uploaded, err := h.files.Ingest(c.Request.Context(), content, header.Filename, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploaded)
}

// List returns the caller's files
func (h *FileHandler) List(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	files, err := h.files.List(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "skip": offset, "limit": limit})
}

func (h *FileHandler) Get(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	file, err := h.files.Get(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *FileHandler) Delete(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	if err := h.files.Delete(c.Request.Context(), id, owner); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preview returns the first rows; ?limit= overrides the configured default
func (h *FileHandler) Preview(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	limit := h.files.DefaultPreviewLimit()
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.InvalidInput("limit must be an integer"))
			return
		}
		limit = n
	}
	preview, err := h.files.Preview(c.Request.Context(), id, owner, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *FileHandler) Analyze(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	analysis, err := h.files.Analyze(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Clean returns the cleaned table as JSON, or as a download with
// ?format=csv or ?format=xlsx
func (h *FileHandler) Clean(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	table, err := h.files.Clean(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format == "json" {
		c.JSON(http.StatusOK, table)
		return
	}
	export, ok := h.exports[format]
	if !ok {
		respondError(c, apperrors.InvalidInput("format must be json, csv or xlsx"))
		return
	}

	// Headers go out only once the whole file has rendered.
	var buf bytes.Buffer
	if err := export.write(&buf, table); err != nil {
		respondError(c, apperrors.Wrap(err, "failed to export cleaned table"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.filename+`"`)
	c.Data(http.StatusOK, export.contentType, buf.Bytes())
}

// advancedPreviewRows bounds the rows echoed back by AdvancedClean
const advancedPreviewRows = 10

// AdvancedClean returns the cleaning report and the first rows of the
// derived table. Nothing is stored.
func (h *FileHandler) AdvancedClean(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	result, err := h.files.AdvancedClean(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id": result.FileID,
		"report":  result.Report,
		"columns": result.Table.Columns,
		"types":   result.Table.Types,
		"preview": result.Table.Records(advancedPreviewRows),
		"message": result.Report.Message,
	})
}

func (h *FileHandler) Quality(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	report, err := h.files.Quality(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *FileHandler) Ask(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("request body must be JSON with a question"))
		return
	}
	result, err := h.files.Ask(c.Request.Context(), id, owner, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FileHandler) Summarize(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	result, err := h.files.Summarize(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FileHandler) FileHistory(c *gin.Context) {
	owner, id, ok := ownerAndFile(c)
	if !ok {
		return
	}
	results, err := h.files.FileHistory(c.Request.Context(), id, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *FileHandler) History(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	results, err := h.files.History(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "skip": offset, "limit": limit})
}

func (h *FileHandler) Usage(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.usage.GetSummary(c.Request.Context(), owner)
	if err != nil {
		respondError(c, apperrors.Wrap(err, "failed to load usage"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

func currentUser(c *gin.Context) (core.ID, bool) {
	userIDStr := c.GetString(userIDKey)
	if userIDStr == "" {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return "", false
	}
	return core.ID(userIDStr), true
}

func ownerAndFile(c *gin.Context) (core.ID, core.ID, bool) {
	owner, ok := currentUser(c)
	if !ok {
		return "", "", false
	}
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.InvalidInput("file id must be a UUID"))
		return "", "", false
	}
	return owner, id, true
}

// pagination reads ?skip= and ?limit=
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageSize, 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, apperrors.InvalidInput("limit must be a positive integer"))
			return 0, 0, false
		}
		limit = min(n, maxPageSize)
	}
	if raw := c.Query("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, apperrors.InvalidInput("skip must be a non-negative integer"))
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
