package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
)

func TestRedisKVGet(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	kv := NewRedisKV(db, DefaultRedisPrefix)

	mock.ExpectGet("fintrack:expenses").SetVal(`[{"id":1}]`)
	mock.ExpectGet("fintrack:investments").RedisNil()

	value, ok, err := kv.Get(ctx, "expenses")
	if err != nil || !ok || string(value) != `[{"id":1}]` {
		t.Errorf("Get(expenses) = %q, %v, %v", value, ok, err)
	}

	value, ok, err = kv.Get(ctx, "investments")
	if err != nil || ok || value != nil {
		t.Errorf("Get(investments) = %q, %v, %v; want absent", value, ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisKVSetDelete(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	kv := NewRedisKV(db, DefaultRedisPrefix)

	mock.ExpectSet("fintrack:theme", []byte("vibrant"), 0).SetVal("OK")
	mock.ExpectDel("fintrack:theme").SetVal(1)

	if err := kv.Set(ctx, "theme", []byte("vibrant")); err != nil {
		t.Errorf("Set failed: %v", err)
	}
	if err := kv.Delete(ctx, "theme"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisKVError(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	kv := NewRedisKV(db, DefaultRedisPrefix)

	boom := errors.New("connection refused")
	mock.ExpectGet("fintrack:expenses").SetErr(boom)

	if _, _, err := kv.Get(ctx, "expenses"); !errors.Is(err, boom) {
		t.Errorf("Get error = %v, want wrapped %v", err, boom)
	}
}
