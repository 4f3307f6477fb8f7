package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/store"
)

// fakeS3 captures uploads in memory.
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*input.Key]
	if !ok {
		return nil, io.EOF
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := &fakeS3{}
	m := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "k", SecretKey: "s"},
		Passphrase: "household secret",
	}, db, store.NewBackupStore(db), slog.Default())
	m.client = fake

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	data, ok := fake.objects[key]
	if !ok {
		t.Fatalf("no object uploaded under %q", key)
	}

	// The upload must decrypt back into a SQLite file.
	plain, err := Decrypt(data, "household secret")
	if err != nil {
		t.Fatalf("decrypt upload: %v", err)
	}
	if !bytes.HasPrefix(plain, []byte("SQLite format 3")) {
		t.Errorf("decrypted snapshot is not a SQLite database")
	}

	// History row recorded.
	history, err := store.NewBackupStore(db).List(10)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(history) != 1 || history[0].Key != key {
		t.Errorf("history = %+v, want one row for %q", history, key)
	}

	// Download round-trips through the client.
	rc, err := m.Download(context.Background(), key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, data) {
		t.Error("download does not match upload")
	}
}

func TestRunNowNotConfigured(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{}, db, store.NewBackupStore(db), slog.Default())
	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected error when backups are not configured")
	}
}
