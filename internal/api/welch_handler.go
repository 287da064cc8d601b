package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gowelch/adapters/excel"
	"gowelch/app"
	"gowelch/domain/stats"
	"gowelch/internal"
	"gowelch/internal/chart"
	"gowelch/internal/errors"
)

// maxBatchSize caps the number of requests accepted in one batch call.
const maxBatchSize = 1000

// WelchHandler serves the Welch test API
type WelchHandler struct {
	service        *app.WelchService
	maxUploadBytes int64
	logger         *internal.Logger
}

// NewWelchHandler creates a new handler
func NewWelchHandler(service *app.WelchService, maxUploadBytes int64) *WelchHandler {
	return &WelchHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         internal.DefaultLogger.Named("API"),
	}
}

// NewEngine builds the gin engine with every API route registered.
func NewEngine(h *WelchHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

// RegisterRoutes mounts the handler under r.
func (h *WelchHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/welch", h.Analyze)
	r.POST("/welch/batch", h.AnalyzeBatch)
	r.POST("/welch/upload", h.Upload)
	r.GET("/analyses", h.ListAnalyses)
	r.GET("/analyses/:id", h.GetAnalysis)
	r.GET("/analyses/:id/chart.svg", h.Chart(chart.FormatSVG))
	r.GET("/analyses/:id/chart.png", h.Chart(chart.FormatPNG))
	r.GET("/analyses/:id/report", h.Report)
	r.GET("/analyses/:id/duplicates", h.Duplicates)
}

// Analyze runs one test from a JSON body. ?save=true persists the result.
func (h *WelchHandler) Analyze(c *gin.Context) {
	var req app.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error(), "code": errors.CodeInvalidInput})
		return
	}
	if save, _ := strconv.ParseBool(c.Query("save")); save {
		req.Save = true
	}

	a, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	c.JSON(status, a)
}

// AnalyzeBatch evaluates a JSON array of requests
func (h *WelchHandler) AnalyzeBatch(c *gin.Context) {
	var reqs []app.AnalysisRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error(), "code": errors.CodeInvalidInput})
		return
	}
	if len(reqs) > maxBatchSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many requests in batch", "code": errors.CodeInvalidInput})
		return
	}

	items, err := h.service.AnalyzeBatch(c.Request.Context(), reqs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Upload reads two groups from a multipart xlsx or csv file and analyzes them
func (h *WelchHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file field is required: " + err.Error(), "code": errors.CodeInvalidInput})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.respondError(c, errors.Wrap(err, "open upload"))
		return
	}
	defer file.Close()

	spec := excel.ColumnSpec{
		GroupColumn: c.PostForm("group_column"),
		ValueColumn: c.PostForm("value_column"),
		Sheet:       c.PostForm("sheet"),
	}
	for _, col := range c.PostFormArray("columns") {
		for _, part := range strings.Split(col, ",") {
			if part = strings.TrimSpace(part); part != "" {
				spec.Columns = append(spec.Columns, part)
			}
		}
	}

	req, err := requestOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	groups, err := excel.NewStreamReader(file, header.Filename).ReadGroups(spec)
	if err != nil {
		h.respondError(c, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "read %s", header.Filename)))
		return
	}

	a, err := h.service.AnalyzeSamples(c.Request.Context(), groups, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// requestOptions reads the optional analysis settings from form or query values.
func requestOptions(c *gin.Context) (app.AnalysisRequest, error) {
	var req app.AnalysisRequest
	if v := c.PostForm("null_difference"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, errors.InvalidInput("null_difference must be a number")
		}
		req.NullDifference = f
	}
	if v := c.PostForm("reporting_level"); v != "" {
		levels, err := stats.ParseLevels(v)
		if err != nil || len(levels) != 1 {
			return req, errors.InvalidInput("reporting_level must be a single level in (0, 1)")
		}
		req.ReportingLevel = levels[0]
	}
	if v := c.PostForm("fan_levels"); v != "" {
		levels, err := stats.ParseLevels(v)
		if err != nil {
			return req, errors.WithCode(errors.CodeInvalidInput, err)
		}
		req.FanLevels = levels
	}
	req.PValueMode = stats.PValueMode(c.PostForm("p_value_mode"))
	req.Save, _ = strconv.ParseBool(c.PostForm("save"))
	return req, nil
}

// GetAnalysis returns a saved analysis
func (h *WelchHandler) GetAnalysis(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Duplicates lists saved analyses sharing the input fingerprint of :id
func (h *WelchHandler) Duplicates(c *gin.Context) {
	out, err := h.service.Duplicates(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": out})
}

// ListAnalyses returns recent saved analyses, newest first
func (h *WelchHandler) ListAnalyses(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer", "code": errors.CodeInvalidInput})
			return
		}
		limit = n
	}

	out, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": out})
}

// Chart renders a fan chart for a saved analysis. ?panel=groups|difference
func (h *WelchHandler) Chart(format chart.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		panel, err := chart.ParsePanel(c.Query("panel"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		a, err := h.service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			h.respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := h.service.RenderChart(&buf, a, panel, format); err != nil {
			h.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

// Report returns the narrative of a saved analysis as HTML
func (h *WelchHandler) Report(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(app.ReportHTML(a)))
}

func (h *WelchHandler) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		h.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
