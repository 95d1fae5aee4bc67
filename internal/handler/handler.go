package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/journal"
	"rollcall/internal/roster"
	"rollcall/internal/webhook"
)

// Checker is a dependency that can report its health.
type Checker interface {
	Healthy(ctx context.Context) bool
}

// Handler serves the attendance API.
type Handler struct {
	svc          *attendance.Service
	exporter     *webhook.Exporter
	issuer       *auth.Issuer
	publisher    *journal.Publisher
	history      journal.Reader // nil when no database is configured
	checks       map[string]Checker
	publicOrigin string
	now          func() time.Time
}

// Deps lists what New needs. History and Checks may be empty.
type Deps struct {
	Service      *attendance.Service
	Exporter     *webhook.Exporter
	Issuer       *auth.Issuer
	Publisher    *journal.Publisher
	History      journal.Reader
	Checks       map[string]Checker
	PublicOrigin string
}

// New creates a handler.
func New(d Deps) *Handler {
	return &Handler{
		svc:          d.Service,
		exporter:     d.Exporter,
		issuer:       d.Issuer,
		publisher:    d.Publisher,
		history:      d.History,
		checks:       d.Checks,
		publicOrigin: d.PublicOrigin,
		now:          time.Now,
	}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "records": len(h.svc.All())}
	for name, chk := range h.checks {
		ok := chk.Healthy(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- Sessions ----------

type sessionRequest struct {
	TeacherName string `json:"teacher_name" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func tokenResponse(teacher string, p auth.TokenPair) gin.H {
	return gin.H{
		"teacher":       teacher,
		"access_token":  p.AccessToken,
		"refresh_token": p.RefreshToken,
		"expires_at":    p.AccessExp.Unix(),
	}
}

// CreateSession logs a teacher in. Any non-empty name is accepted.
func (h *Handler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.issuer.Issue(req.TeacherName)
	if err != nil {
		if errors.Is(err, auth.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusCreated, tokenResponse(req.TeacherName, pair))
}

// RefreshSession rotates a token pair.
func (h *Handler) RefreshSession(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.issuer.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	claims, _ := h.issuer.Parse(pair.AccessToken, auth.UseAccess)
	c.JSON(http.StatusOK, tokenResponse(claims.Subject, pair))
}

// ---------- Records ----------

func (h *Handler) ListRecords(c *gin.Context) {
	var f roster.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if f.Class == "" {
		f.Class = roster.AllClasses
	}
	visible, total := h.svc.Records(f)
	c.JSON(http.StatusOK, gin.H{
		"records": visible,
		"visible": len(visible),
		"total":   total,
		"filter":  f,
	})
}

func (h *Handler) ListClasses(c *gin.Context) {
	classes := h.svc.Classes()
	if classes == nil {
		classes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

type statusRequest struct {
	Status *string `json:"status" binding:"required"`
}

// SetStatus changes one record's status.
func (h *Handler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := roster.ParseStatus(*req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "summary": h.svc.Summary()})
}

// MarkPresent marks every record visible under the posted filter present.
func (h *Handler) MarkPresent(c *gin.Context) {
	var f roster.Filter
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	n, notice, err := h.svc.MarkVisiblePresent(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n, "notice": notice, "summary": h.svc.Summary()})
}

// ---------- Aggregation ----------

func (h *Handler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Summary())
}

func (h *Handler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Report(c.DefaultQuery("class", roster.AllClasses)))
}

// ExportCSV writes the sheet rows for ?date= (default today) as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	now := h.now()
	date := c.DefaultQuery("date", now.Format(time.DateOnly))
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	rows := roster.SheetRows(h.svc.All(), date, now)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.csv"`, date))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"date", "rollNumber", "name", "class", "status", "timestamp"})
	for _, r := range rows {
		_ = w.Write([]string{r.Date, r.RollNumber, r.Name, r.Class, r.Status, r.Timestamp})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("csv export failed: %v", err)
	}
}

// ---------- Sync ----------

type syncRequest struct {
	WebhookURL string `json:"webhook_url"`
}

// Sync sends the current list to the posted webhook URL once. A 202 only
// means the request was dispatched; the receiver's answer is never read.
func (h *Handler) Sync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = h.publicOrigin
	}

	res, err := h.exporter.Trigger(c.Request.Context(), webhook.Request{
		URL:         req.WebhookURL,
		Origin:      origin,
		TriggeredBy: auth.Teacher(c),
	}, h.svc.All())
	notice := webhook.NoticeFor(err)

	if res.ID != "" {
		if perr := h.publisher.Publish(context.WithoutCancel(c.Request.Context()), res); perr != nil {
			log.Printf("journal publish for %s failed: %v", res.ID, perr)
		}
	}

	var dispatchErr *webhook.DispatchError
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"sync_id": res.ID, "notice": notice})
	case errors.Is(err, webhook.ErrEmptyURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "notice": notice})
	case errors.Is(err, webhook.ErrInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "notice": notice})
	case errors.As(err, &dispatchErr):
		c.JSON(http.StatusBadGateway, gin.H{"sync_id": res.ID, "error": err.Error(), "notice": notice})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "notice": notice})
	}
}

// SyncStatus reports whether a sync is in flight.
func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"in_flight": h.exporter.Busy()})
}

// SyncHistory lists journal entries.
func (h *Handler) SyncHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync journal not configured"})
		return
	}
	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	entries, err := h.history.List(c.Request.Context(), c.Query("outcome"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
