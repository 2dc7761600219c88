package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	original := []byte(`[{"id":1,"dateISO":"2024-01-01","amount":100}]`)
	if err := store.WriteFile("expenses", original); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	read, err := store.ReadFile("expenses")
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch before encryption")
	}

	password := "testpassword123"
	if err := store.EnableEncryption(password); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if !store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return true")
	}

	rawData, _ := os.ReadFile(filepath.Join(dir, "expenses.json"))
	if !isAgeEncrypted(rawData) {
		t.Error("File should be encrypted on disk")
	}

	read, err = store.ReadFile("expenses")
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after encryption: got %q, want %q", string(read), string(original))
	}

	store.Lock()
	if _, err := store.ReadFile("expenses"); !errors.Is(err, ErrLocked) {
		t.Errorf("ReadFile while locked: got %v, want ErrLocked", err)
	}
	if err := store.WriteFile("expenses", original); !errors.Is(err, ErrLocked) {
		t.Errorf("WriteFile while locked: got %v, want ErrLocked", err)
	}

	if err := store.Unlock(password); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}
	if !store.IsUnlocked() {
		t.Error("Expected IsUnlocked() after Unlock")
	}

	if err := store.DisableEncryption(password); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}
	if store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return false after disable")
	}

	rawData, _ = os.ReadFile(filepath.Join(dir, "expenses.json"))
	if string(rawData) != string(original) {
		t.Errorf("Raw content mismatch after decryption")
	}
}

func TestWrongPassword(t *testing.T) {
	store, _ := New(t.TempDir())

	if err := store.WriteFile("theme", []byte("dark")); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := store.EnableEncryption("correctpassword"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	store.Lock()

	if err := store.Unlock("wrongpassword"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("Unlock with wrong password: got %v, want ErrIncorrectPassword", err)
	}
	if err := store.DisableEncryption("wrongpassword"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("DisableEncryption with wrong password: got %v, want ErrIncorrectPassword", err)
	}
}

func TestPasswordTooShort(t *testing.T) {
	store, _ := New(t.TempDir())

	if err := store.EnableEncryption("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("got %v, want ErrPasswordTooShort", err)
	}
}

func TestEncryptionStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if err := store.EnableEncryption("testpassword123"); !errors.Is(err, ErrAlreadyEncrypted) {
		t.Errorf("second EnableEncryption: got %v, want ErrAlreadyEncrypted", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	if !reopened.IsEncrypted() {
		t.Error("Reopened storage should be encrypted")
	}
	if reopened.IsUnlocked() {
		t.Error("Reopened storage should start locked")
	}
}

func TestNewFilesEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	content := []byte(`[]`)
	if err := store.WriteFile("investments", content); err != nil {
		t.Fatalf("Failed to write new file: %v", err)
	}

	rawData, _ := os.ReadFile(filepath.Join(dir, "investments.json"))
	if !isAgeEncrypted(rawData) {
		t.Error("New file should be encrypted on disk")
	}

	read, err := store.ReadFile("investments")
	if err != nil {
		t.Fatalf("Failed to read new file: %v", err)
	}
	if string(read) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", string(read), string(content))
	}
}

func TestFileKV(t *testing.T) {
	ctx := context.Background()
	store, _ := New(t.TempDir())
	kv := NewFileKV(store)

	if _, ok, err := kv.Get(ctx, "expenses"); err != nil || ok {
		t.Fatalf("Get on missing key = ok %v, err %v; want absent", ok, err)
	}

	if err := kv.Set(ctx, "expenses", []byte("[]")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err := kv.Get(ctx, "expenses")
	if err != nil || !ok || string(value) != "[]" {
		t.Errorf("Get = %q, %v, %v; want \"[]\", true, nil", value, ok, err)
	}

	if err := kv.Delete(ctx, "expenses"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := kv.Delete(ctx, "expenses"); err != nil {
		t.Errorf("Delete on missing key should succeed, got %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "expenses"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	buf := []byte("dark")
	kv.Set(ctx, "theme", buf)
	buf[0] = 'X'

	value, ok, _ := kv.Get(ctx, "theme")
	if !ok || string(value) != "dark" {
		t.Errorf("Get = %q, %v; want stored copy \"dark\"", value, ok)
	}

	kv.Delete(ctx, "theme")
	if _, ok, _ := kv.Get(ctx, "theme"); ok {
		t.Error("key should be gone after Delete")
	}
}
