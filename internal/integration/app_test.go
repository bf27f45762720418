package integration_test

import (
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/seat-reservation/internal/app"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/events"
	"github.com/metinatakli/seat-reservation/internal/repository"
	"github.com/metinatakli/seat-reservation/internal/reservation"
	appvalidator "github.com/metinatakli/seat-reservation/internal/validator"
	"github.com/redis/go-redis/v9"
)

// TestApp exposes the HTTP application backed by the Postgres store together
// with both persistent inventory stores for store level tests.
type TestApp struct {
	App           *app.Application
	DB            *pgxpool.Pool
	Redis         *redis.Client
	ShowRepo      *repository.PostgresShowRepository
	PostgresStore *repository.PostgresInventoryStore
	RedisStore    *repository.RedisInventoryStore
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	testApp := &TestApp{
		DB:            db,
		Redis:         redisClient,
		ShowRepo:      repository.NewPostgresShowRepository(db),
		PostgresStore: repository.NewPostgresInventoryStore(db),
		RedisStore:    repository.NewRedisInventoryStore(redisClient),
	}

	engine := testApp.Engine(testApp.PostgresStore)

	testApp.App = app.NewApp(cfg, discardLogger(), appvalidator.NewValidator(), testApp.ShowRepo, engine)

	return testApp, nil
}

// Engine builds a reservation engine over the Postgres catalog and store.
func (a *TestApp) Engine(store domain.InventoryStore) *reservation.Engine {
	return reservation.NewEngine(a.ShowRepo, store, appvalidator.NewValidator(), events.NoopPublisher{}, discardLogger())
}

func (a *TestApp) Close() {
	a.Redis.Close()
	a.DB.Close()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
