package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"door_controller/internal/models"
	"door_controller/internal/service"
)

// ---- Service mocks ----

type mockAuth struct {
	genToken    string
	genErr      error
	parseErr    error
	lastGenPass string
	lastParsed  string
}

func (m *mockAuth) GenerateToken(password string) (string, error) {
	m.lastGenPass = password
	return m.genToken, m.genErr
}
func (m *mockAuth) ParseToken(token string) error {
	m.lastParsed = token
	return m.parseErr
}

type mockDevice struct {
	openErr    error
	lightErr   error
	openCalls  int
	lightCalls int
}

func (m *mockDevice) OpenDoor(ctx context.Context) error {
	m.openCalls++
	return m.openErr
}
func (m *mockDevice) LightOn(ctx context.Context) error {
	m.lightCalls++
	return m.lightErr
}

type mockMonitoring struct {
	snapshot models.StatusSnapshot
	detailed string
}

func (m *mockMonitoring) Snapshot() models.StatusSnapshot { return m.snapshot }
func (m *mockMonitoring) Detailed() string                { return m.detailed }

type mockOperationLog struct {
	resp     []models.Operation
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastKind string
}

func (m *mockOperationLog) List(ctx context.Context, f service.LogFilter) ([]models.Operation, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastKind = f.Kind
	return m.resp, m.err
}

type mockProvisioner struct {
	err    error
	calls  int
	lastIn service.ProvisionParams
}

func (m *mockProvisioner) Provision(ctx context.Context, p service.ProvisionParams) error {
	m.calls++
	m.lastIn = p
	return m.err
}

// ---- Shared test helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
