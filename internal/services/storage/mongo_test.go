package storage

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mockDocumentStore is an in-memory DocumentStore keyed by _id
type mockDocumentStore struct {
	docs       map[string]string
	replaceErr error
	upserts    int
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{docs: make(map[string]string)}
}

func (m *mockDocumentStore) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	key := filter.(bson.M)["_id"].(string)
	value, ok := m.docs[key]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(bson.M{"_id": key, "value": value}, nil, nil)
}

func (m *mockDocumentStore) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	doc := replacement.(kvDocument)
	m.docs[doc.Key] = doc.Value
	for _, o := range opts {
		if o.Upsert != nil && *o.Upsert {
			m.upserts++
		}
	}
	return &mongo.UpdateResult{}, nil
}

func (m *mockDocumentStore) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	key := filter.(bson.M)["_id"].(string)
	delete(m.docs, key)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func TestMongoKVRoundtrip(t *testing.T) {
	ctx := context.Background()
	coll := newMockDocumentStore()
	kv := NewMongoKV(coll)

	if _, ok, err := kv.Get(ctx, "cryptoInvestments"); err != nil || ok {
		t.Fatalf("Get on missing key = ok %v, err %v; want absent", ok, err)
	}

	if err := kv.Set(ctx, "cryptoInvestments", []byte(`[{"id":7}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if coll.upserts != 1 {
		t.Errorf("expected Set to upsert, got %d upserts", coll.upserts)
	}

	value, ok, err := kv.Get(ctx, "cryptoInvestments")
	if err != nil || !ok || string(value) != `[{"id":7}]` {
		t.Errorf("Get = %q, %v, %v", value, ok, err)
	}

	if err := kv.Delete(ctx, "cryptoInvestments"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "cryptoInvestments"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestMongoKVSetError(t *testing.T) {
	coll := newMockDocumentStore()
	coll.replaceErr = errors.New("not primary")
	kv := NewMongoKV(coll)

	if err := kv.Set(context.Background(), "theme", []byte("dark")); !errors.Is(err, coll.replaceErr) {
		t.Errorf("Set error = %v, want wrapped %v", err, coll.replaceErr)
	}
}
