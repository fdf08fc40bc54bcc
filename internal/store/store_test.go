package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := testStore(t)

	if got := s.Token(); got != "" {
		t.Fatalf("expected empty token on fresh store, got %q", got)
	}

	if err := s.SaveToken("tok-abc"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if got := s.Token(); got != "tok-abc" {
		t.Errorf("expected tok-abc, got %q", got)
	}

	if err := s.SaveToken("tok-def"); err != nil {
		t.Fatalf("overwrite token: %v", err)
	}
	if got := s.Token(); got != "tok-def" {
		t.Errorf("expected overwritten token, got %q", got)
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := testStore(t)

	if _, ok, err := s.User(); err != nil || ok {
		t.Fatalf("expected no user on fresh store, got ok=%v err=%v", ok, err)
	}

	want := model.User{
		ID:               "u1",
		Email:            "ada@example.org",
		Name:             "Ada",
		ProfileType:      "researcher",
		SubscribedTopics: []string{"t-ml", "t-nlp"},
	}
	if err := s.SaveUser(want); err != nil {
		t.Fatalf("save user: %v", err)
	}

	got, ok, err := s.User()
	if err != nil {
		t.Fatalf("read user: %v", err)
	}
	if !ok {
		t.Fatal("expected stored user")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestClearCredentials(t *testing.T) {
	s := testStore(t)

	if err := s.SaveToken("tok"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := s.SaveUser(model.User{ID: "u1"}); err != nil {
		t.Fatalf("save user: %v", err)
	}

	if err := s.ClearCredentials(); err != nil {
		t.Fatalf("clear credentials: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Errorf("expected token wiped, got %q", got)
	}
	if _, ok, _ := s.User(); ok {
		t.Error("expected user wiped")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SaveToken("persist-me"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got := s.Token(); got != "persist-me" {
		t.Errorf("expected persisted token, got %q", got)
	}
}
