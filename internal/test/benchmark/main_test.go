package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fire-alert-service/internal/app/routes"
	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/internal/infrastructure/database"
	"fire-alert-service/pkg/logger"
)

const (
	adminEmail    = "admin@fire.com"
	adminPassword = "admin123"
)

type loginResponse struct {
	Code int `json:"code"`
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type statusResponse struct {
	Data struct {
		EventID *uint `json:"eventId"`
	} `json:"data"`
}

type locationResponse struct {
	Data struct {
		Outcome string `json:"outcome"`
	} `json:"data"`
}

var (
	baseURL   string
	authToken string
	svc       *container.ServiceContainer
)

// TestMain serves the full router in-process and signs in as the default admin
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	server, cleanup, err := startServer()
	if err != nil {
		fmt.Printf("start server: %v\n", err)
		os.Exit(1)
	}
	baseURL = server.URL + "/api"

	if authToken, err = login(); err != nil {
		cleanup()
		fmt.Printf("login: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	cleanup()
	os.Exit(code)
}

func startServer() (*httptest.Server, func(), error) {
	db, err := gorm.Open(sqlite.Open("file:benchmark?mode=memory&cache=shared"),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	// one writer at a time for the in-memory database
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{
		JWTSecretKey:         "benchmark-secret",
		JWTExpiryHours:       1,
		DBQueryTimeout:       5 * time.Second,
		CORSAllowOrigin:      "*",
		SensorRateLimit:      10000,
		SensorRateBurst:      10000,
		DefaultAdminUsername: "Admin",
		DefaultAdminEmail:    adminEmail,
		DefaultAdminPassword: adminPassword,
	}

	if err := database.Migrate(db, database.MigrationAuto); err != nil {
		return nil, nil, err
	}
	if _, err := database.EnsureAdminExists(db, cfg); err != nil {
		return nil, nil, err
	}

	svc = container.NewServiceContainer(db, cfg, nil)
	svc.Start()
	server := httptest.NewServer(routes.SetupRouter(svc))

	return server, func() {
		server.Close()
		svc.Shutdown()
		sqlDB.Close()
	}, nil
}

func login() (string, error) {
	body, _ := json.Marshal(map[string]string{"email": adminEmail, "password": adminPassword})
	resp, err := http.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || out.Data.Token == "" {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return out.Data.Token, nil
}

func TestConcurrentStatusUpdates(t *testing.T) {
	before := countFireEvents(t)

	var mu sync.Mutex
	ids := make(map[uint]bool)

	bench := NewAPIBenchmark(baseURL, 10, 50, "")
	bench.Inspect = func(statusCode int, body []byte) {
		var out statusResponse
		if json.Unmarshal(body, &out) == nil && out.Data.EventID != nil {
			mu.Lock()
			ids[*out.Data.EventID] = true
			mu.Unlock()
		}
	}

	result := bench.RunPOST("/sensor/update", map[string]string{"status": "FIRE"})
	result.Log(logger.WithComponent("benchmark"))

	assert.Zero(t, result.FailureCount, "success rate %.2f%%", result.SuccessRate())
	assert.Len(t, ids, 50, "every FIRE update stores its own event")

	assert.Equal(t, before+50, countFireEvents(t))
}

func countFireEvents(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, svc.GetDB().Model(&models.FireEvent{}).Count(&n).Error)
	return n
}

func TestConcurrentLocationReportsSingleWinner(t *testing.T) {
	bench := NewAPIBenchmark(baseURL, 1, 1, "")
	var created statusResponse
	bench.Inspect = func(_ int, body []byte) { _ = json.Unmarshal(body, &created) }
	bench.RunPOST("/sensor/update", map[string]string{"status": "FIRE"})
	require.NotNil(t, created.Data.EventID)

	var mu sync.Mutex
	outcomes := make(map[string]int)

	// stays inside the location route burst of 20
	bench = NewAPIBenchmark(baseURL, 10, 20, authToken)
	bench.Inspect = func(_ int, body []byte) {
		var out locationResponse
		if json.Unmarshal(body, &out) == nil {
			mu.Lock()
			outcomes[out.Data.Outcome]++
			mu.Unlock()
		}
	}

	result := bench.RunPOST("/sensor/location", map[string]interface{}{
		"eventId":   *created.Data.EventID,
		"latitude":  -6.2,
		"longitude": 106.8,
		"address":   "Jakarta",
	})
	result.Log(logger.WithComponent("benchmark"))

	assert.Zero(t, result.FailureCount)
	assert.Equal(t, 1, outcomes[services.OutcomeMerged])
	assert.Equal(t, 19, outcomes[services.OutcomeAlreadyLocated])
}

func TestAdminLogList(t *testing.T) {
	result := NewAPIBenchmark(baseURL, 5, 20, authToken).RunGET("/logs")
	result.Log(logger.WithComponent("benchmark"))
	assert.Zero(t, result.FailureCount, "success rate %.2f%%", result.SuccessRate())
}

func BenchmarkStatusRead(b *testing.B) {
	client := &http.Client{Timeout: 5 * time.Second}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp, err := client.Get(baseURL + "/sensor/status")
		if err != nil {
			b.Fatal(err)
		}
		resp.Body.Close()
	}
}
