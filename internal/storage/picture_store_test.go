package storage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileHeader(t *testing.T, name, ctype string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", ctype)
	pw, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := pw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestSavePictureAndRemove(t *testing.T) {
	store, err := NewPictureStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPictureStore: %v", err)
	}
	fh := newFileHeader(t, "pano.png", "image/png", []byte("pngdata"))

	url, err := store.SavePicture(fh)
	if err != nil {
		t.Fatalf("SavePicture: %v", err)
	}
	if !strings.HasPrefix(url, "/upload/pictures/") || !strings.HasSuffix(url, "-pano.png") {
		t.Fatalf("url = %q", url)
	}

	onDisk := filepath.Join(store.Root(), "pictures", strings.TrimPrefix(url, "/upload/pictures/"))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != "pngdata" {
		t.Fatalf("stored content = %q", data)
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatal("file survived Remove")
	}
}

func TestSavePictureRejectsUnsupportedType(t *testing.T) {
	store, err := NewPictureStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPictureStore: %v", err)
	}

	fh := newFileHeader(t, "scan.gif", "image/gif", []byte("gifdata"))
	if _, err := store.SavePicture(fh); !errors.Is(err, ErrUnsupportedPicture) {
		t.Fatalf("err = %v, want ErrUnsupportedPicture", err)
	}

	// extension and content type must agree
	fh = newFileHeader(t, "scan.png", "application/pdf", []byte("pdfdata"))
	if _, err := store.SavePicture(fh); !errors.Is(err, ErrUnsupportedPicture) {
		t.Fatalf("err = %v, want ErrUnsupportedPicture", err)
	}
}

func TestRemoveRejectsForeignPath(t *testing.T) {
	store, err := NewPictureStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPictureStore: %v", err)
	}
	if err := store.Remove("/etc/passwd"); err == nil {
		t.Fatal("Remove must reject non-upload urls")
	}
}

func TestRecapPath(t *testing.T) {
	root := t.TempDir()
	store, err := NewPictureStore(root)
	if err != nil {
		t.Fatalf("NewPictureStore: %v", err)
	}
	path, url := store.RecapPath("recaps-March-2023-03-31.xlsx")
	if path != filepath.Join(root, "recaps", "recaps-March-2023-03-31.xlsx") {
		t.Errorf("path = %q", path)
	}
	if url != "/upload/recaps/recaps-March-2023-03-31.xlsx" {
		t.Errorf("url = %q", url)
	}
}
