package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndGet(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	created, err := store.Create("night-1", "M31")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() returned empty id")
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "night-1" || got.Target != "M31" {
		t.Errorf("Get() = %+v, want name night-1 target M31", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := store.CapturesPath("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CapturesPath() error = %v, want ErrNotFound", err)
	}
	if err := store.AddImage("nope", "f.jpg", 1, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddImage() error = %v, want ErrNotFound", err)
	}
}

func TestCapturesPath_Exists(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root)
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	created, err := store.Create("s", "target")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	path, err := store.CapturesPath(created.ID)
	if err != nil {
		t.Fatalf("CapturesPath() error: %v", err)
	}
	want := filepath.Join(root, created.ID, "captures")
	if path != want {
		t.Errorf("CapturesPath() = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("captures dir missing: %v", err)
	}
}

func TestAddImage_AppendsRecords(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}
	created, err := store.Create("s", "target")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	score := 0.82
	if err := store.AddImage(created.ID, "a.jpg", 1024, nil); err != nil {
		t.Fatalf("AddImage() error: %v", err)
	}
	if err := store.AddImage(created.ID, "b.jpg", 2048, &score); err != nil {
		t.Fatalf("AddImage() error: %v", err)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(got.Images) != 2 {
		t.Fatalf("Images count = %d, want 2", len(got.Images))
	}
	if got.Images[0].Filename != "a.jpg" || got.Images[1].Filename != "b.jpg" {
		t.Errorf("image order wrong: %+v", got.Images)
	}
	if got.Images[1].FocusScore == nil || *got.Images[1].FocusScore != 0.82 {
		t.Errorf("FocusScore = %v, want 0.82", got.Images[1].FocusScore)
	}
}

func TestList(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.Create("s", "t"); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	sessions, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("List() returned %d sessions, want 3", len(sessions))
	}
}
