//go:build integration

package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// startRedis returns a client for a throwaway container, or for
// PORTAL_TEST_REDIS_ADDR when set.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	addr := os.Getenv("PORTAL_TEST_REDIS_ADDR")
	if addr == "" {
		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		if err != nil {
			t.Fatalf("start redis container: %v", err)
		}
		t.Cleanup(func() { _ = c.Terminate(context.Background()) })

		addr, err = c.Endpoint(ctx, "")
		if err != nil {
			t.Fatalf("endpoint: %v", err)
		}
	}

	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := NewSessionRepository(startRedis(t))
	ctx := context.Background()
	s := &domain.Session{ID: "s1", UserID: "u1"}

	if err := repo.Create(ctx, s, time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, err := repo.Active(ctx, "s1", "u1"); err != nil || !ok {
		t.Fatalf("expected active, got %v, %v", ok, err)
	}
	if ok, _ := repo.Active(ctx, "s1", "u2"); ok {
		t.Fatalf("session must not be active for another user")
	}
	if err := repo.Extend(ctx, "s1", time.Hour); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if err := repo.Revoke(ctx, "s1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := repo.Active(ctx, "s1", "u1"); ok {
		t.Fatalf("revoked session must not be active")
	}
	if err := repo.Extend(ctx, "s1", time.Hour); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDraftStore_RoundTripAndExpiry(t *testing.T) {
	client := startRedis(t)
	store := NewDraftStore(client, time.Minute)
	ctx := context.Background()

	w := &domain.Wizard{ID: "w1", UserID: "u1", Step: domain.StepConfirm, Date: "2026-03-12", Time: "10:00"}
	if err := store.Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, "w1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Step != domain.StepConfirm || got.Date != "2026-03-12" {
		t.Fatalf("unexpected draft: %+v", got)
	}
	if ttl := client.TTL(ctx, draftKey("w1")).Val(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	client.Del(ctx, draftKey("w1"))
	if _, err := store.Get(ctx, "w1"); !errors.Is(err, domain.ErrWizardNotFound) {
		t.Fatalf("expected ErrWizardNotFound, got %v", err)
	}
}
