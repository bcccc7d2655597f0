package nifti

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeDecodeFloat32(t *testing.T) {
	img, err := New(2, 3, 4, DTFloat32)
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Data {
		img.Data[i] = float64(i) * 0.5
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Header.Dim != img.Header.Dim {
		t.Fatalf("dim = %v, want %v", got.Header.Dim, img.Header.Dim)
	}
	if len(got.Data) != 24 {
		t.Fatalf("len(data) = %d", len(got.Data))
	}
	for i := range got.Data {
		if math.Abs(got.Data[i]-img.Data[i]) > 1e-6 {
			t.Fatalf("voxel %d = %v, want %v", i, got.Data[i], img.Data[i])
		}
	}
}

func TestDecodeAppliesScaling(t *testing.T) {
	img, err := New(2, 2, 1, DTInt16)
	if err != nil {
		t.Fatal(err)
	}
	img.Header.SclSlope = 2
	img.Header.SclInter = 10
	img.Data = []float64{10, 12, 14, 16} // raw 0,1,2,3 after inversion

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 12, 14, 16}
	for i := range want {
		if got.Data[i] != want[i] {
			t.Fatalf("voxel %d = %v, want %v", i, got.Data[i], want[i])
		}
	}
}

func TestEncodeClampsIntegerRange(t *testing.T) {
	img, err := New(1, 1, 2, DTUint8)
	if err != nil {
		t.Fatal(err)
	}
	img.Data = []float64{-5, 300}

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Data[0] != 0 || got.Data[1] != 255 {
		t.Fatalf("data = %v, want [0 255]", got.Data)
	}
}

func TestReadWriteFileGzip(t *testing.T) {
	img, err := New(3, 3, 3, DTFloat64)
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Data {
		img.Data[i] = float64(i)
	}

	path := filepath.Join(t.TempDir(), "sub-01_ses-M00_T1w.nii.gz")
	if err := WriteFile(path, img); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for i := range img.Data {
		if got.Data[i] != img.Data[i] {
			t.Fatalf("voxel %d = %v, want %v", i, got.Data[i], img.Data[i])
		}
	}
}

func TestDecodeRejectsWrongMagic(t *testing.T) {
	img, err := New(1, 1, 1, DTUint8)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	copy(raw[344:348], []byte{'n', 'i', '1', 0}) // header/data pair magic

	_, err = Decode(bytes.NewReader(raw))
	if err == nil || !strings.Contains(err.Error(), "magic") {
		t.Fatalf("expected magic error, got %v", err)
	}
}

func TestDecodeRejectsUnsupportedDatatype(t *testing.T) {
	img, err := New(1, 1, 1, DTUint8)
	if err != nil {
		t.Fatal(err)
	}
	img.Header.Datatype = 128 // RGB, unsupported

	var buf bytes.Buffer
	if err := img.Encode(&buf); err == nil {
		t.Fatal("expected encode to reject unsupported datatype")
	}
}

func TestVoxelCount(t *testing.T) {
	h := Header{}
	h.Dim = [8]int16{4, 10, 10, 10, 5, 0, 0, 0}
	if got := h.VoxelCount(); got != 5000 {
		t.Fatalf("VoxelCount = %d, want 5000", got)
	}
}
