package analyses

import (
	"errors"

	"resume-checker/internal/extract"
	"resume-checker/internal/llm"
)

// ErrMissingInput aliases the extractor's sentinel so callers need one import.
var ErrMissingInput = extract.ErrMissingInput

const (
	ErrorCodeMissingInput       = "missing_input"
	ErrorCodeDocumentProcessing = "document_processing_error"
	ErrorCodeAnalysis           = "analysis_error"
	ErrorCodeValidation         = "validation_error"
	ErrorCodeInternal           = "internal_error"
)

// MessageMissingPDF is shown when an action runs without a resume.
const MessageMissingPDF = "Please upload a PDF file."

// errorCode classifies a controller failure.
func errorCode(err error) string {
	var procErr *extract.ProcessingError
	var analysisErr *llm.AnalysisError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return ErrorCodeMissingInput
	case errors.As(err, &procErr):
		return ErrorCodeDocumentProcessing
	case errors.As(err, &analysisErr):
		return ErrorCodeAnalysis
	default:
		return ErrorCodeInternal
	}
}
