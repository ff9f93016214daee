package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"listingai/internal/sqlinline"
)

type recordingPublisher struct {
	values []string
}

func (p *recordingPublisher) PublishCredentialUpdated(_ context.Context, value string) {
	p.values = append(p.values, value)
}

func TestSaveRejectsWhitespace(t *testing.T) {
	pub := &recordingPublisher{}
	store := NewStore(Options{Publisher: pub})

	for _, v := range []string{"", "   ", "\t\n"} {
		if err := store.Save(context.Background(), v); !errors.Is(err, ErrEmptyCredential) {
			t.Fatalf("Save(%q) = %v, want ErrEmptyCredential", v, err)
		}
	}
	if len(pub.values) != 0 {
		t.Fatalf("expected no events, got %v", pub.values)
	}
}

func TestSaveValidationFailurePreventsPersistence(t *testing.T) {
	pub := &recordingPublisher{}
	var checked string
	store := NewStore(Options{
		Publisher: pub,
		Validator: func(_ context.Context, value string) bool {
			checked = value
			return false
		},
	})

	err := store.Save(context.Background(), "  AIza-bad  ")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if checked != "AIza-bad" {
		t.Fatalf("validator saw %q", checked)
	}
	exists, err := store.Exists(context.Background())
	if err != nil || exists {
		t.Fatalf("expected nothing stored, got exists=%v err=%v", exists, err)
	}
	if len(pub.values) != 0 {
		t.Fatalf("expected no events, got %v", pub.values)
	}
}

func TestSaveGetClearLifecycle(t *testing.T) {
	pub := &recordingPublisher{}
	store := NewStore(Options{
		Publisher: pub,
		Validator: func(context.Context, string) bool { return true },
	})
	ctx := context.Background()

	if err := store.Save(ctx, " AIza-good "); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	value, ok, err := store.Get(ctx)
	if err != nil || !ok || value != "AIza-good" {
		t.Fatalf("Get = (%q, %v, %v)", value, ok, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if exists, _ := store.Exists(ctx); exists {
		t.Fatal("expected credential to be cleared")
	}
	if len(pub.values) != 2 || pub.values[0] != "AIza-good" || pub.values[1] != "" {
		t.Fatalf("unexpected events: %#v", pub.values)
	}
}

func TestSaveUnverifiedSkipsValidation(t *testing.T) {
	store := NewStore(Options{
		Validator: func(context.Context, string) bool {
			t.Fatal("validator must not run")
			return false
		},
	})
	if err := store.SaveUnverified(context.Background(), "offline-key"); err != nil {
		t.Fatalf("SaveUnverified error: %v", err)
	}
	if v, ok, _ := store.Get(context.Background()); !ok || v != "offline-key" {
		t.Fatalf("expected offline-key, got %q", v)
	}
}

func TestFileBackendPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credential.json")
	first, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend error: %v", err)
	}
	ctx := context.Background()
	if err := first.Save(ctx, Key, "abc123"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat credential file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	second, _ := NewFileBackend(path)
	v, ok, err := second.Load(ctx, Key)
	if err != nil || !ok || v != "abc123" {
		t.Fatalf("Load = (%q, %v, %v)", v, ok, err)
	}

	if err := second.Delete(ctx, Key); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok, _ := first.Load(ctx, Key); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestFileBackendMissingFile(t *testing.T) {
	backend, _ := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"))
	v, ok, err := backend.Load(context.Background(), Key)
	if err != nil || ok || v != "" {
		t.Fatalf("Load = (%q, %v, %v)", v, ok, err)
	}
	if err := backend.Delete(context.Background(), Key); err != nil {
		t.Fatalf("Delete on missing file: %v", err)
	}
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	backend, _ := NewFileBackend(path)
	if _, _, err := backend.Load(context.Background(), Key); err == nil {
		t.Fatal("expected decode error")
	}
}

type stubExecutor struct {
	token string
	err   error
	exec  struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return stubRow{token: s.token, err: s.err}
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestPostgresBackendLoadTrims(t *testing.T) {
	backend := NewPostgresBackend(&stubExecutor{token: " abc123 "})
	v, ok, err := backend.Load(context.Background(), Key)
	if err != nil || !ok || v != "abc123" {
		t.Fatalf("Load = (%q, %v, %v)", v, ok, err)
	}
}

func TestPostgresBackendNoRows(t *testing.T) {
	backend := NewPostgresBackend(&stubExecutor{err: pgx.ErrNoRows})
	v, ok, err := backend.Load(context.Background(), Key)
	if err != nil || ok || v != "" {
		t.Fatalf("Load = (%q, %v, %v)", v, ok, err)
	}
}

func TestPostgresBackendSaveAndDelete(t *testing.T) {
	exec := &stubExecutor{}
	backend := NewPostgresBackend(exec)

	if err := backend.Save(context.Background(), Key, "secret"); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if exec.exec.query != sqlinline.QUpsertIntegrationToken {
		t.Fatal("expected upsert query")
	}
	if len(exec.exec.args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[1].(string); !ok || v != "secret" {
		t.Fatalf("expected secret argument, got %T %v", exec.exec.args[1], exec.exec.args[1])
	}

	if err := backend.Delete(context.Background(), Key); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if exec.exec.query != sqlinline.QDeleteIntegrationToken || exec.exec.args[0] != Key {
		t.Fatalf("unexpected delete call: %q %v", exec.exec.query, exec.exec.args)
	}
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"short":             "*****",
		"AIzaSyExample1234": "AIza*********1234",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
