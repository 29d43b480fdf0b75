//go:build integration

package router

// End-to-end tests against real Postgres and Redis started by testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/config"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"
	"github.com/agastya71/mysl-pos-project-sub006/internal/testutil"
	"github.com/agastya71/mysl-pos-project-sub006/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

type e2eEnv struct {
	*testAPI
	rdb *redis.Client
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("thriftpos_test"),
		tcPostgres.WithUsername("thriftpos"),
		tcPostgres.WithPassword("thriftpos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		CORSOrigins:        "*",
		JWTSecret:          "e2e-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     2,
		CardAutoCapture:    true,
		OrgName:            "E2E Thrift",
		ReceiptStoragePath: t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	workerCtx, cancel := context.WithCancel(ctx)
	dispatcher := worker.NewDispatcher(rdb)
	receiptSvc := service.NewReceiptService(
		repository.NewReceiptRepository(db),
		repository.NewTransactionRepository(db),
		cfg.OrgName, cfg.ReceiptStoragePath,
	)
	pool := worker.NewPool(rdb, map[string]worker.Handler{
		worker.JobReceipt: worker.NewReceiptWorker(receiptSvc, nil, cfg.OrgName),
	})
	pool.Start(workerCtx, cfg.WorkerPoolSize)
	t.Cleanup(func() {
		cancel()
		pool.Wait()
	})

	engine := New(Deps{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		Processor: infra.NewMockProcessor(),
		Receipts:  dispatcher,
	})

	testutil.User(t, db, "cashier", model.RoleCashier)
	testutil.User(t, db, "manager", model.RoleManager)

	return &e2eEnv{
		testAPI: &testAPI{
			t:        t,
			engine:   engine,
			db:       db,
			terminal: testutil.Terminal(t, db, "T01"),
			product:  testutil.Product(t, db, "E2E-1", "10.00", "0.08", 5),
		},
		rdb: rdb,
	}
}

func TestE2E_ConcurrentSalesNeverOversell(t *testing.T) {
	env := setupE2E(t)
	token := env.login("cashier").AccessToken

	const buyers = 12
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		status = map[int]int{}
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := env.do(http.MethodPost, "/v1/transactions", token, env.cashSale(1, "10.80", "20.00"))
			mu.Lock()
			status[w.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, status[http.StatusCreated])
	assert.Equal(t, buyers-5, status[http.StatusConflict])
	assert.Equal(t, 0, testutil.Stock(t, env.db, env.product.ID))

	// Sequence numbers are gap-free because failed sales roll back their bump.
	var term model.Terminal
	require.NoError(t, env.db.First(&term, "id = ?", env.terminal.ID).Error)
	assert.Equal(t, int64(5), term.LastSequence)
}

func TestE2E_ReceiptGeneratedAsynchronously(t *testing.T) {
	env := setupE2E(t)
	token := env.login("cashier").AccessToken

	w := env.do(http.MethodPost, "/v1/transactions", token, env.cashSale(1, "10.80", "20.00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[dto.TransactionResponse](t, w)

	var receipt dto.ReceiptResponse
	require.Eventually(t, func() bool {
		w := env.do(http.MethodGet, "/v1/receipts/"+sale.ID, token, nil)
		if w.Code != http.StatusOK {
			return false
		}
		receipt = decode[dto.ReceiptResponse](t, w)
		return receipt.Status == model.ReceiptGenerated
	}, 20*time.Second, 200*time.Millisecond)
	assert.True(t, receipt.PDFAvailable)

	w = env.do(http.MethodGet, "/v1/receipts/pdf/"+receipt.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestE2E_LookupCacheInvalidatedBySale(t *testing.T) {
	env := setupE2E(t)
	token := env.login("cashier").AccessToken
	path := "/v1/products/lookup/BC-E2E-1"

	w := env.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[dto.ProductLookupResponse](t, w).QuantityInStock)

	n, err := env.rdb.Exists(context.Background(), "product:barcode:BC-E2E-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	w = env.do(http.MethodPost, "/v1/transactions", token, env.cashSale(2, "21.60", "21.60"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[dto.ProductLookupResponse](t, w).QuantityInStock)
}

func TestE2E_HealthReportsDependencies(t *testing.T) {
	env := setupE2E(t)

	w := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]interface{}](t, w)
	assert.Equal(t, "connected", health["db"])
	assert.Equal(t, "connected", health["redis"])
	assert.Equal(t, map[string]interface{}{
		worker.QueueReceipt: float64(0),
		worker.QueueEmail:   float64(0),
	}, health["dlq"], fmt.Sprint(health))
}
