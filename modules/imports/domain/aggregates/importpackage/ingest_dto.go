package importpackage

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/constants"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
)

// IngestDTO points at a survey container on local disk. The file is copied
// into managed storage; the source is left untouched.
type IngestDTO struct {
	FilePath         string `json:"file_path" validate:"required"`
	OriginalFileName string `json:"original_file_name"`
}

func (d *IngestDTO) Normalize() {
	d.FilePath = strings.TrimSpace(d.FilePath)
	d.OriginalFileName = strings.TrimSpace(d.OriginalFileName)
	if d.OriginalFileName == "" && d.FilePath != "" {
		d.OriginalFileName = filepath.Base(d.FilePath)
	}
}

func (d *IngestDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}

	validationErrors := make(serrors.ValidationErrors)
	for field, err := range serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), nil) {
		validationErrors[field] = err
	}
	return validationErrors, false
}
