package kv

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per key in a Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

type firestoreEntry struct {
	Key   string `firestore:"key"`
	Value string `firestore:"value"` // JSON document
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: collection,
	}
}

// Retrieves a value by document ID.
func (fs *FirestoreStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := fs.client.Collection(fs.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var entry firestoreEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return []byte(entry.Value), nil
}

func (fs *FirestoreStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := fs.client.Collection(fs.collection).Doc(key).Set(ctx, firestoreEntry{
		Key:   key,
		Value: string(value),
	})
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	return nil
}

func (fs *FirestoreStore) Delete(ctx context.Context, key string) error {
	_, err := fs.client.Collection(fs.collection).Doc(key).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// Retrieves every document whose key starts with prefix, ordered by key.
func (fs *FirestoreStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	query := fs.client.Collection(fs.collection).
		Where("key", ">=", prefix).
		Where("key", "<", prefix+"\uf8ff").
		OrderBy("key", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var results []Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}

		var entry firestoreEntry
		if err := doc.DataTo(&entry); err != nil {
			// Skip documents not written by this store
			continue
		}

		results = append(results, Entry{Key: entry.Key, Value: []byte(entry.Value)})
	}

	return results, nil
}

func (fs *FirestoreStore) Close() error {
	return fs.client.Close()
}
