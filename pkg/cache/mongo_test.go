package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestNewMongoCacheUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = NewMongoCache(ctx, MongoConfig{
		URI:     "mongodb://" + addr + "/?directConnection=true",
		Timeout: 300 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("NewMongoCache() error = nil, want connection failure")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("NewMongoCache() error = %v, want ErrNetwork", err)
	}
}

func TestClassifyMongo(t *testing.T) {
	if classifyMongo(nil) != nil {
		t.Error("classifyMongo(nil) should be nil")
	}

	plain := errors.New("duplicate key")
	if got := classifyMongo(plain); got != plain || IsRetryable(got) {
		t.Errorf("classifyMongo(server error) = %v, want unchanged", got)
	}

	got := classifyMongo(context.DeadlineExceeded)
	if !IsRetryable(got) || !errors.Is(got, ErrNetwork) {
		t.Errorf("classifyMongo(deadline) = %v, want retryable ErrNetwork", got)
	}
}
