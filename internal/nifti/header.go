package nifti

import (
	"fmt"
)

// Supported NIfTI-1 datatype codes.
const (
	DTUint8   int16 = 2
	DTInt16   int16 = 4
	DTInt32   int16 = 8
	DTFloat32 int16 = 16
	DTFloat64 int16 = 64
)

const (
	headerSize = 348
	// voxOffset is where voxel data starts when encoding: the header plus
	// the four-byte extension flag.
	voxOffset = 352
)

// Header is the 348-byte NIfTI-1 header.
type Header struct {
	SizeofHdr      int32      // Must be 348
	DataTypeUnused [10]byte   // Unused
	DBNameUnused   [18]byte   // Unused
	ExtentsUnused  int32      // Unused
	SessionUnused  int16      // Unused
	RegularUnused  byte       // Unused
	DimInfo        byte       // MRI slice ordering
	Dim            [8]int16   // Data array dimensions
	IntentP1       float32    // 1st intent parameter
	IntentP2       float32    // 2nd intent parameter
	IntentP3       float32    // 3rd intent parameter
	IntentCode     int16      // NIFTI_INTENT_* code
	Datatype       int16      // Defines data type
	Bitpix         int16      // Number of bits per voxel
	SliceStart     int16      // First slice index
	Pixdim         [8]float32 // Grid spacing
	VoxOffset      float32    // Offset into .nii file
	SclSlope       float32    // Data scaling: slope
	SclInter       float32    // Data scaling: offset
	SliceEnd       int16      // Last slice index
	SliceCode      byte       // Slice timing order
	XyztUnits      byte       // Units of pixdim[1..4]
	CalMax         float32    // Max display intensity
	CalMin         float32    // Min display intensity
	SliceDuration  float32    // Time for one slice
	Toffset        float32    // Time axis shift
	GlmaxUnused    int32      // Unused
	GlminUnused    int32      // Unused
	Descrip        [80]byte   // Free text
	AuxFile        [24]byte   // Auxiliary filename
	QformCode      int16      // NIFTI_XFORM_* code
	SformCode      int16      // NIFTI_XFORM_* code
	QuaternB       float32    // Quaternion b param
	QuaternC       float32    // Quaternion c param
	QuaternD       float32    // Quaternion d param
	QoffsetX       float32    // Quaternion x shift
	QoffsetY       float32    // Quaternion y shift
	QoffsetZ       float32    // Quaternion z shift
	SrowX          [4]float32 // 1st row affine transform
	SrowY          [4]float32 // 2nd row affine transform
	SrowZ          [4]float32 // 3rd row affine transform
	IntentName     [16]byte   // Meaning of the data
	Magic          [4]byte    // Must be "n+1\0"
}

var singleFileMagic = [4]byte{'n', '+', '1', 0}

func (h *Header) validate() error {
	if h.SizeofHdr != headerSize {
		return fmt.Errorf("invalid header size %d, want %d", h.SizeofHdr, headerSize)
	}
	if h.Magic != singleFileMagic {
		return fmt.Errorf("unsupported magic %q, only single-file n+1 images are supported", h.Magic[:3])
	}
	if h.Dim[0] < 1 || h.Dim[0] > 7 {
		return fmt.Errorf("dim[0] = %d out of range [1, 7]", h.Dim[0])
	}
	if _, err := bytesPerVoxel(h.Datatype); err != nil {
		return err
	}
	return nil
}

// VoxelCount returns the number of voxels implied by the dim array.
func (h *Header) VoxelCount() int {
	count := 1
	for i := int16(1); i <= h.Dim[0]; i++ {
		d := int(h.Dim[i])
		if d > 0 {
			count *= d
		}
	}
	return count
}

func bytesPerVoxel(datatype int16) (int, error) {
	switch datatype {
	case DTUint8:
		return 1, nil
	case DTInt16:
		return 2, nil
	case DTInt32, DTFloat32:
		return 4, nil
	case DTFloat64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported datatype code %d", datatype)
	}
}
