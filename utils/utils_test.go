package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"scan.TIFF", true},
		{"scan.tif", true},
		{"icon.png", true},
		{"old.bmp", true},
		{"clip.mp4", false},
		{"notes.txt", false},
		{"jpg", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImageFile(tt.name); got != tt.want {
				t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	if !IsVideoFile("clip.MOV") {
		t.Error("IsVideoFile(clip.MOV) = false, want true")
	}
	if IsVideoFile("photo.png") {
		t.Error("IsVideoFile(photo.png) = true, want false")
	}
}

func TestGetFolderCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	got, err := GetFolder(dir)
	if err != nil {
		t.Fatalf("GetFolder() error: %v", err)
	}
	if got != dir {
		t.Errorf("GetFolder() = %q, want %q", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory at %q, stat err: %v", dir, err)
	}
}

func TestGetImagePaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.txt", "d.mp4", "e.tiff"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0666); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0777); err != nil {
		t.Fatal(err)
	}

	got, err := GetImagePaths(dir)
	if err != nil {
		t.Fatalf("GetImagePaths() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "e.tiff"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetImagePaths() = %v, want %v", got, want)
	}
}

func TestGetImagePathsCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new")
	got, err := GetImagePaths(dir)
	if err != nil {
		t.Fatalf("GetImagePaths() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetImagePaths() = %v, want empty", got)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory was not created: %v", err)
	}
}

func TestCamelCaseSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"lower", []string{"lower"}},
		{"CamelCase", []string{"Camel", "Case"}},
		{"camelCaseSplit", []string{"camel", "Case", "Split"}},
		{"parseJSONFile", []string{"parse", "JSON", "File"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"ABC", []string{"ABC"}},
		{"parse2Json", []string{"parse2Json"}},
		{"v2Model", []string{"v2Model"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CamelCaseSplit(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CamelCaseSplit(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
