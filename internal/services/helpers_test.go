package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/revocation"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/storage"
	"gorm.io/gorm"
)

// recordingBlobs wraps an in-memory bucket, records deletes and can inject failures.
type recordingBlobs struct {
	inner *storage.BucketStore

	mu         sync.Mutex
	puts       []string
	deletes    []string
	failPut    error
	failDelete error
}

func newRecordingBlobs() *recordingBlobs {
	return &recordingBlobs{inner: storage.NewMemBucket("http://cdn.test")}
}

func (b *recordingBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Object, error) {
	b.mu.Lock()
	fail := b.failPut
	b.mu.Unlock()
	if fail != nil {
		return storage.Object{}, fail
	}
	obj, err := b.inner.Put(ctx, key, r, size, contentType)
	if err == nil {
		b.mu.Lock()
		b.puts = append(b.puts, obj.Ref)
		b.mu.Unlock()
	}
	return obj, err
}

func (b *recordingBlobs) Delete(ctx context.Context, ref string) error {
	b.mu.Lock()
	b.deletes = append(b.deletes, ref)
	fail := b.failDelete
	b.mu.Unlock()
	if fail != nil {
		return fail
	}
	return b.inner.Delete(ctx, ref)
}

func (b *recordingBlobs) deleteCount(ref string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, d := range b.deletes {
		if d == ref {
			n++
		}
	}
	return n
}

func (b *recordingBlobs) exists(t *testing.T, ref string) bool {
	t.Helper()
	ok, err := b.inner.Exists(context.Background(), ref)
	if err != nil {
		t.Fatalf("exists %s: %v", ref, err)
	}
	return ok
}

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	blobs    *recordingBlobs
	auth     *AuthService
	items    *ItemService
	messages *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	blobs := newRecordingBlobs()
	dir := NewUserDirectory(db)
	messages := NewMessageService(db, dir)
	return &testEnv{
		db:       db,
		cfg:      cfg,
		blobs:    blobs,
		auth:     NewAuthService(db, cfg, revocation.NewMemoryRevoker()),
		items:    NewItemService(db, blobs, dir, messages, 1<<20),
		messages: messages,
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@campus.test",
		Password: "x",
	}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (e *testEnv) createReport(t *testing.T, owner *models.User, itemType string, img *Upload) *models.ItemReport {
	t.Helper()
	r, err := e.items.Create(context.Background(), owner.ID, CreateItemInput{
		Title:       "Blue backpack",
		Description: "Navy blue with a keychain",
		Location:    "Library",
		Type:        itemType,
		Image:       img,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return r
}

func pngUpload(content string) *Upload {
	return &Upload{
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func strPtr(s string) *string { return &s }
