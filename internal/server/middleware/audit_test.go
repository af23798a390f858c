package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/security"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	userID, action, resource, metadata string
}

func (l *recordingLogger) LogEvent(_ context.Context, userID, action, resource, metadata string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{userID, action, resource, metadata})
}

func newAuditRouter(logger *recordingLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Audit(logger))
	r.POST("/api/projects", func(c *gin.Context) {
		c.Set(sessionKey, security.Session{UserID: "u1", Role: "ADMIN"})
		c.Status(http.StatusCreated)
	})
	r.POST("/api/projects/fail", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})
	r.GET("/api/projects", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAudit_LogsMutation(t *testing.T) {
	logger := &recordingLogger{}
	r := newAuditRouter(logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/projects", nil))

	if len(logger.events) != 1 {
		t.Fatalf("events = %d, want 1", len(logger.events))
	}
	ev := logger.events[0]
	if ev.userID != "u1" {
		t.Errorf("userID = %q, want u1", ev.userID)
	}
	if ev.action != "create" || ev.resource != "project" {
		t.Errorf("action/resource = %s/%s, want create/project", ev.action, ev.resource)
	}
	if ev.metadata != "/api/projects" {
		t.Errorf("metadata = %q, want request path", ev.metadata)
	}
}

func TestAudit_SkipsReadsAndFailures(t *testing.T) {
	logger := &recordingLogger{}
	r := newAuditRouter(logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/projects/fail", nil))

	if len(logger.events) != 0 {
		t.Fatalf("events = %d, want 0", len(logger.events))
	}
}
