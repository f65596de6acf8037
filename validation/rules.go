package validation

const (
	// Document decoding rules
	RuleValidationInvalidSyntax      = "validation-invalid-syntax"
	RuleValidationInvalidSchema      = "validation-invalid-schema"
	RuleValidationTypeMismatch       = "validation-type-mismatch"
	RuleValidationSupportedVersion   = "validation-supported-version"
	RuleValidationInvalidReference   = "validation-invalid-reference"
	RuleValidationCircularReference  = "validation-circular-reference"
	RuleValidationDuplicateTypeName  = "validation-duplicate-type-name"
	RuleValidationInvalidSelector    = "validation-invalid-selector"
	RuleValidationExampleMismatch    = "validation-example-mismatch"
	RuleGenerationSkippedProperty    = "generation-skipped-property"
	RuleGenerationSkippedEntry       = "generation-skipped-entry"
	RuleGenerationUnsupportedKeyword = "generation-unsupported-keyword"
	RuleGenerationNameCollision      = "generation-name-collision"
)
