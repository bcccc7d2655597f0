package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Image is a decoded NIfTI-1 volume. Data holds the voxel intensities in
// file order with any scl slope/intercept already applied.
type Image struct {
	Header Header
	Data   []float64
}

// New builds a blank 3D image of the given dimensions and datatype.
func New(x, y, z int, datatype int16) (*Image, error) {
	bits, err := bytesPerVoxel(datatype)
	if err != nil {
		return nil, err
	}
	header := Header{
		SizeofHdr: headerSize,
		Datatype:  datatype,
		Bitpix:    int16(bits * 8),
		VoxOffset: voxOffset,
		SclSlope:  1,
		Magic:     singleFileMagic,
	}
	header.Dim = [8]int16{3, int16(x), int16(y), int16(z), 1, 1, 1, 1}
	header.Pixdim = [8]float32{1, 1, 1, 1, 1, 1, 1, 1}
	return &Image{
		Header: header,
		Data:   make([]float64, x*y*z),
	}, nil
}

// Decode reads a single-file NIfTI-1 image from r.
func Decode(r io.Reader) (*Image, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var header Header
	var order binary.ByteOrder = binary.LittleEndian
	if err := binary.Read(bytes.NewReader(raw[:]), order, &header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if header.Dim[0] < 1 || header.Dim[0] > 7 {
		order = binary.BigEndian
		if err := binary.Read(bytes.NewReader(raw[:]), order, &header); err != nil {
			return nil, fmt.Errorf("decode header: %w", err)
		}
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	offset := int64(header.VoxOffset)
	if offset < voxOffset {
		offset = voxOffset
	}
	if _, err := io.CopyN(io.Discard, r, offset-headerSize); err != nil {
		return nil, fmt.Errorf("skip to voxel data: %w", err)
	}

	data, err := readVoxels(r, order, header.Datatype, header.VoxelCount())
	if err != nil {
		return nil, err
	}

	// Apply the affine intensity scaling the header declares. Slope zero
	// means "no scaling" per the format.
	slope := float64(header.SclSlope)
	inter := float64(header.SclInter)
	if slope != 0 && (slope != 1 || inter != 0) {
		for i := range data {
			data[i] = data[i]*slope + inter
		}
	}

	return &Image{Header: header, Data: data}, nil
}

// Encode writes the image to w in little-endian byte order. Voxels are
// stored in the header's datatype with the declared scaling inverted, so a
// decode of the output yields the same intensities.
func (img *Image) Encode(w io.Writer) error {
	header := img.Header
	header.SizeofHdr = headerSize
	header.VoxOffset = voxOffset
	header.Magic = singleFileMagic
	if err := header.validate(); err != nil {
		return err
	}
	if want := header.VoxelCount(); want != len(img.Data) {
		return fmt.Errorf("dim declares %d voxels but image has %d", want, len(img.Data))
	}

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	// Extension flag: no extensions present.
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return fmt.Errorf("write extension flag: %w", err)
	}

	data := img.Data
	slope := float64(header.SclSlope)
	inter := float64(header.SclInter)
	if slope != 0 && (slope != 1 || inter != 0) {
		data = make([]float64, len(img.Data))
		for i, v := range img.Data {
			data[i] = (v - inter) / slope
		}
	}

	return writeVoxels(w, binary.LittleEndian, header.Datatype, data)
}

// ReadFile decodes a NIfTI image from disk, transparently decompressing
// .nii.gz files.
func ReadFile(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	img, err := Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// WriteFile encodes the image to disk, gzip-compressing when the path ends
// in .gz. The file is written atomically via a temporary sibling.
func WriteFile(path string, img *Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	var writer io.Writer = tmp
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(tmp)
		writer = gz
	}

	if err := img.Encode(writer); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("flush gzip stream: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace image: %w", err)
	}
	return nil
}

func readVoxels(r io.Reader, order binary.ByteOrder, datatype int16, count int) ([]float64, error) {
	data := make([]float64, count)
	switch datatype {
	case DTUint8:
		raw := make([]uint8, count)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("read voxel data: %w", err)
		}
		for i, v := range raw {
			data[i] = float64(v)
		}
	case DTInt16:
		raw := make([]int16, count)
		if err := binary.Read(r, order, &raw); err != nil {
			return nil, fmt.Errorf("read voxel data: %w", err)
		}
		for i, v := range raw {
			data[i] = float64(v)
		}
	case DTInt32:
		raw := make([]int32, count)
		if err := binary.Read(r, order, &raw); err != nil {
			return nil, fmt.Errorf("read voxel data: %w", err)
		}
		for i, v := range raw {
			data[i] = float64(v)
		}
	case DTFloat32:
		raw := make([]float32, count)
		if err := binary.Read(r, order, &raw); err != nil {
			return nil, fmt.Errorf("read voxel data: %w", err)
		}
		for i, v := range raw {
			data[i] = float64(v)
		}
	case DTFloat64:
		if err := binary.Read(r, order, &data); err != nil {
			return nil, fmt.Errorf("read voxel data: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported datatype code %d", datatype)
	}
	return data, nil
}

func writeVoxels(w io.Writer, order binary.ByteOrder, datatype int16, data []float64) error {
	switch datatype {
	case DTUint8:
		raw := make([]uint8, len(data))
		for i, v := range data {
			raw[i] = uint8(clamp(math.Round(v), 0, math.MaxUint8))
		}
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("write voxel data: %w", err)
		}
		return nil
	case DTInt16:
		raw := make([]int16, len(data))
		for i, v := range data {
			raw[i] = int16(clamp(math.Round(v), math.MinInt16, math.MaxInt16))
		}
		return writeBinary(w, order, raw)
	case DTInt32:
		raw := make([]int32, len(data))
		for i, v := range data {
			raw[i] = int32(clamp(math.Round(v), math.MinInt32, math.MaxInt32))
		}
		return writeBinary(w, order, raw)
	case DTFloat32:
		raw := make([]float32, len(data))
		for i, v := range data {
			raw[i] = float32(v)
		}
		return writeBinary(w, order, raw)
	case DTFloat64:
		return writeBinary(w, order, data)
	default:
		return fmt.Errorf("unsupported datatype code %d", datatype)
	}
}

func writeBinary(w io.Writer, order binary.ByteOrder, data any) error {
	if err := binary.Write(w, order, data); err != nil {
		return fmt.Errorf("write voxel data: %w", err)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
