package application

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"wmslink/internal/service/filefeed/domain"
)

// ValidationResult carries both halves of the schema gate: structural
// errors from strict decoding and the rejection list from the
// required-field pass. Only Valid drives the pipeline decision; the
// violation lists exist for logging and audit.
type ValidationResult struct {
	StructuralErrors []string
	FieldViolations  []string
}

func (r *ValidationResult) Valid() bool {
	return len(r.StructuralErrors) == 0 && len(r.FieldViolations) == 0
}

func (r *ValidationResult) Summary() string {
	parts := append(append([]string{}, r.StructuralErrors...), r.FieldViolations...)
	return strings.Join(parts, "; ")
}

// DocumentValidator decodes a partner-order payload and enforces the
// schema: strict XML structure first, then the mandatory fields declared
// on the document model.
type DocumentValidator struct {
	validate *validator.Validate
}

func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{validate: validator.New()}
}

func (v *DocumentValidator) ValidateDocument(content string) (*domain.PartnerOrderDocument, *ValidationResult) {
	result := &ValidationResult{}

	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = true

	var doc domain.PartnerOrderDocument
	if err := dec.Decode(&doc); err != nil {
		result.StructuralErrors = append(result.StructuralErrors, err.Error())
		return nil, result
	}

	if err := v.validate.Struct(&doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.FieldViolations = append(result.FieldViolations,
					"mandatory field missing or empty: "+fe.Namespace())
			}
		} else {
			result.StructuralErrors = append(result.StructuralErrors, err.Error())
		}
		return nil, result
	}

	return &doc, result
}
