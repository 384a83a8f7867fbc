package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir string, m *Manifest) {
	t.Helper()
	if err := Write(filepath.Join(dir, ManifestFile), m); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
}

func TestFind_InStartDir(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "cre-project-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	writeManifest(t, tempDir, &Manifest{Name: "demo", Language: "go"})

	info, err := Find(tempDir)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if info == nil {
		t.Fatal("Expected manifest to be found")
	}
	if info.Manifest.Name != "demo" {
		t.Errorf("Name = %q, want 'demo'", info.Manifest.Name)
	}
	if info.Manifest.Language != "go" {
		t.Errorf("Language = %q, want 'go'", info.Manifest.Language)
	}
}

func TestFind_WalksUpward(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "cre-project-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	writeManifest(t, tempDir, &Manifest{Name: "root"})

	nested := filepath.Join(tempDir, "src", "internal", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}

	info, err := Find(nested)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if info == nil {
		t.Fatal("Expected manifest to be found from nested dir")
	}

	resolvedRoot, _ := filepath.EvalSymlinks(info.Root)
	expectedRoot, _ := filepath.EvalSymlinks(tempDir)
	if resolvedRoot != expectedRoot {
		t.Errorf("Root = %q, want %q", resolvedRoot, expectedRoot)
	}
}

func TestFind_NotFound(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "cre-project-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	info, err := Find(tempDir)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if info != nil {
		t.Errorf("Expected no manifest, found one at %q", info.Root)
	}
}

func TestContains(t *testing.T) {
	info := &Info{Root: "/work/app"}

	tests := []struct {
		path string
		want bool
	}{
		{"src/auth/login.go", true},
		{"./src/auth/login.go", true},
		{"../other/file.go", false},
		{"/work/app/src/main.go", true},
		{"/work/other/main.go", false},
		{"/work/app", true},
	}

	for _, tt := range tests {
		if got := info.Contains(tt.path); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIgnored(t *testing.T) {
	info := &Info{Root: "/work/app", Manifest: Manifest{Ignore: []string{"gen"}}}

	if !info.Ignored("gen") {
		t.Error("Expected 'gen' to be ignored")
	}
	if info.Ignored("src") {
		t.Error("Expected 'src' not to be ignored")
	}

	// Empty ignore list falls back to defaults
	bare := &Info{Root: "/work/app"}
	if !bare.Ignored("node_modules") {
		t.Error("Expected default ignore list to cover node_modules")
	}
}
