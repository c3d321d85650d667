//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aapkitaxi/service-booking/internal/domain"
	bookingDomain "github.com/aapkitaxi/service-booking/internal/domain/booking"
	"github.com/aapkitaxi/service-booking/internal/repository"
)

var (
	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error
)

// startMongo starts one shared MongoDB container for the package and hands
// each caller its own connected client. Ryuk reaps the container after the
// test process exits.
func startMongo(t *testing.T) *mongo.Client {
	t.Helper()
	ctx := context.Background()

	mongoOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForListeningPort("27017/tcp").
				WithStartupTimeout(60 * time.Second),
		}
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			mongoErr = err
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			mongoErr = err
			return
		}
		port, err := container.MappedPort(ctx, "27017")
		if err != nil {
			mongoErr = err
			return
		}
		mongoURI = fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	})
	require.NoError(t, mongoErr, "failed to start MongoDB container")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

// setupMongoRepo builds a repository over a database unique to the test, so
// tests never see each other's documents.
func setupMongoRepo(t *testing.T) *repository.MongoBookingRepository {
	t.Helper()
	client := startMongo(t)

	dbName := strings.ToLower(strings.ReplaceAll(t.Name(), "/", "_"))
	repo, err := repository.NewMongoBookingRepository(context.Background(), client, dbName)
	require.NoError(t, err)
	return repo
}

func seedMongoBooking(t *testing.T, repo *repository.MongoBookingRepository, id int64, phone string, createdAt time.Time) {
	t.Helper()
	b := bookingDomain.Reconstruct(
		id, "Asha Rao", phone, "MG Road", "Airport", "2026-09-15T10:30",
		3, bookingDomain.StatusPending, createdAt, createdAt,
	)
	require.NoError(t, repo.Insert(context.Background(), b))
}

func TestMongoInsertAndFindByID(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	created := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	seedMongoBooking(t, repo, 1, "9876543210", created)

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ID())
	assert.Equal(t, "Asha Rao", found.Name())
	assert.Equal(t, "Airport", found.Drop())
	assert.Equal(t, "2026-09-15T10:30", found.Datetime())
	assert.Equal(t, bookingDomain.StatusPending, found.Status())
	assert.WithinDuration(t, created, found.CreatedAt(), time.Second)
}

func TestMongoFindByIDNotFound(t *testing.T) {
	repo := setupMongoRepo(t)

	_, err := repo.FindByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestMongoDuplicateIDRejected(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seedMongoBooking(t, repo, 1, "9876543210", now)

	dup := bookingDomain.Reconstruct(
		1, "Vikram Singh", "9123456780", "Koramangala", "Whitefield", "2026-09-16T08:00",
		2, bookingDomain.StatusPending, now, now,
	)
	err := repo.Insert(ctx, dup)
	require.Error(t, err, "unique index on id must reject the second insert")

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", found.Name(), "first document untouched")
}

func TestMongoMaxID(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	max, err := repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), max, "empty collection")

	now := time.Now().UTC()
	seedMongoBooking(t, repo, 3, "9876543210", now)
	seedMongoBooking(t, repo, 7, "9876543211", now)

	max, err = repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), max)
}

func TestMongoListAllNewestFirst(t *testing.T) {
	repo := setupMongoRepo(t)

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	seedMongoBooking(t, repo, 1, "9876543210", base)
	seedMongoBooking(t, repo, 2, "9876543211", base.Add(time.Minute))
	seedMongoBooking(t, repo, 3, "9876543212", base.Add(2*time.Minute))

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID())
	assert.Equal(t, int64(2), all[1].ID())
	assert.Equal(t, int64(1), all[2].ID())
}

func TestMongoUpdateStatus(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	created := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	seedMongoBooking(t, repo, 1, "9876543210", created)

	modified, err := repo.UpdateStatus(ctx, 1, bookingDomain.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, modified)

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, found.Status())
	assert.True(t, found.UpdatedAt().After(created), "updated_at refreshed")
}

func TestMongoUpdateStatusUnknownID(t *testing.T) {
	repo := setupMongoRepo(t)

	modified, err := repo.UpdateStatus(context.Background(), 42, bookingDomain.StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestMongoFindByIDAndPhone(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	seedMongoBooking(t, repo, 5, "9876543210", time.Now().UTC())

	found, err := repo.FindByIDAndPhone(ctx, 5, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int64(5), found.ID())

	_, err = repo.FindByIDAndPhone(ctx, 5, "9999999999")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestMongoPing(t *testing.T) {
	repo := setupMongoRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
