package caps

import (
	"fmt"
	"strings"
)

// FileTypeFor returns the filename pattern for the requested preprocessing
// pipeline. For pet-linear the tracer and SUVR reference region are part of
// the filename entities; t1-linear ignores them.
func FileTypeFor(preprocessing string, uncropped bool, tracer, suvrReferenceRegion string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(preprocessing)) {
	case "t1-linear":
		if uncropped {
			return FileType{
				Pattern:     "*space-MNI152NLin2009cSym_res-1x1x1_T1w.nii.gz",
				Description: "T1w MRI registered to MNI space",
			}, nil
		}
		return FileType{
			Pattern:     "*space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz",
			Description: "T1w MRI registered to MNI space and cropped",
		}, nil
	case "pet-linear":
		tracer = strings.TrimSpace(tracer)
		suvrReferenceRegion = strings.TrimSpace(suvrReferenceRegion)
		if tracer == "" {
			return FileType{}, fmt.Errorf("pet-linear preprocessing requires a tracer")
		}
		if suvrReferenceRegion == "" {
			return FileType{}, fmt.Errorf("pet-linear preprocessing requires a SUVR reference region")
		}
		if uncropped {
			return FileType{
				Pattern: fmt.Sprintf(
					"*trc-%s_space-MNI152NLin2009cSym_res-1x1x1_suvr-%s_pet.nii.gz",
					tracer, suvrReferenceRegion,
				),
				Description: fmt.Sprintf("%s PET registered to MNI space", tracer),
			}, nil
		}
		return FileType{
			Pattern: fmt.Sprintf(
				"*trc-%s_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_suvr-%s_pet.nii.gz",
				tracer, suvrReferenceRegion,
			),
			Description: fmt.Sprintf("%s PET registered to MNI space and cropped", tracer),
		}, nil
	default:
		return FileType{}, fmt.Errorf("unknown preprocessing %q (expected t1-linear or pet-linear)", preprocessing)
	}
}
