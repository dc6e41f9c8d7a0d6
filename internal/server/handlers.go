package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHeader names the demo account a request acts as.
const UserHeader = "X-ERP-User"

const userKey = "erp.user"

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	v1 := r.Group("/v1")
	v1.POST("/login", s.handleLogin)
	v1.GET("/status", s.handleStatus)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.handleStream)

	authed := v1.Group("", s.requireUser())
	authed.POST("/logout", s.handleLogout)
	authed.GET("/dashboard", s.handleDashboard)
	authed.GET("/stats", s.handleStats)
	authed.GET("/projects", s.handleProjects)
	authed.GET("/projects/:id/risk", s.handleProjectRisk)
	authed.GET("/risk", s.handleRisk)
	authed.GET("/cashflow", s.handleCashFlow)
	authed.GET("/invoices", s.handleInvoices)
	authed.POST("/invoices", s.handleCreateInvoice)
	authed.GET("/accounts", s.handleAccounts)
	authed.GET("/users", s.handleUsers)
	authed.GET("/audit", s.handleAudit)

	return r
}

// observe logs each request and records its metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		s.metrics.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route, c.Request.Method).Observe(elapsed.Seconds())

		s.mu.Lock()
		s.requestCount++
		s.mu.Unlock()

		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed)
	}
}

// requireUser rejects requests that do not name a known user.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(UserHeader)
		u, err := s.backend.LookupUser(c.Request.Context(), name)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
				return
			}
			s.fail(c, err)
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) model.User {
	u, _ := c.Get(userKey)
	user, _ := u.(model.User)
	return user
}

// fail maps service errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Server) handleEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.recentEvents())
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	u, err := s.backend.Login(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			s.metrics.logins.WithLabelValues("rejected").Inc()
		}
		s.fail(c, err)
		return
	}
	s.metrics.logins.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleLogout(c *gin.Context) {
	s.backend.Logout(c.Request.Context(), currentUser(c).Username)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := pipeline.LoadDashboard(c.Request.Context(), s.backend)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.backend.DashboardStats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleProjects(c *gin.Context) {
	projects, err := s.backend.Projects(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) handleRisk(c *gin.Context) {
	risks, err := s.backend.RiskAnalysis(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, risks)
}

func (s *Server) handleProjectRisk(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "project id must be a positive integer"})
		return
	}
	a, err := s.backend.ProjectRisk(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleCashFlow(c *gin.Context) {
	cf, err := s.backend.CashFlow(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cf)
}

func (s *Server) handleInvoices(c *gin.Context) {
	invoices, err := s.backend.Invoices(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		invoices = pipeline.FilterInvoicesByStatus(invoices, model.InvoiceStatus(status))
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) handleCreateInvoice(c *gin.Context) {
	var req service.NewInvoice
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed invoice: " + err.Error()})
		return
	}
	inv, err := s.backend.CreateInvoice(c.Request.Context(), currentUser(c).Username, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (s *Server) handleAccounts(c *gin.Context) {
	accounts, err := s.backend.Accounts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (s *Server) handleUsers(c *gin.Context) {
	users, err := s.backend.Users(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleAudit(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	entries, err := s.backend.AuditLog(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleStream(c *gin.Context) {
	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// Current status first so clients know the stream is live.
	c.SSEvent("status", s.snapshotStatus())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-ch:
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}
