package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this patient number already exists")
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrInvalidGender        = errors.New("invalid gender value")
)
