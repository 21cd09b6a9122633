package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRoomStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRoomStore(client, time.Minute)

	_ = store.GetOrCreate("R1")
	if !mr.Exists("quiz:room:R1") {
		t.Fatalf("expected redis key to be set")
	}

	store.DeleteIfEmpty("R1")
	if mr.Exists("quiz:room:R1") {
		t.Fatalf("expected redis key to be removed")
	}
}
