package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeCacheMiss          ErrorCode = "COMMON_014"
	ErrCodeCanceled           ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Sentinel values without a module prefix.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES       ErrorCode = "MOL_001"
	ErrCodeMoleculeUnknownElement      ErrorCode = "MOL_002"
	ErrCodeMoleculeValenceViolation    ErrorCode = "MOL_003"
	ErrCodeMoleculeDegenerateGraph     ErrorCode = "MOL_004"
	ErrCodeFingerprintGenerationFailed ErrorCode = "MOL_005"
	ErrCodeFeaturizationFailed         ErrorCode = "MOL_006"
)

// Dataset Module Error Codes
const (
	ErrCodeDatasetReadFailed    ErrorCode = "DAT_001"
	ErrCodeDatasetColumnMissing ErrorCode = "DAT_002"
	ErrCodeDatasetEmpty         ErrorCode = "DAT_003"
	ErrCodeDatasetSplitInvalid  ErrorCode = "DAT_004"
	ErrCodeDatasetCollateFailed ErrorCode = "DAT_005"
)

// Training Module Error Codes
const (
	ErrCodeTrainingEmptyLoader    ErrorCode = "TRN_001"
	ErrCodeTrainingShapeMismatch  ErrorCode = "TRN_002"
	ErrCodeTrainingDeviceMismatch ErrorCode = "TRN_003"
	ErrCodeTrainingDiverged       ErrorCode = "TRN_004"
	ErrCodeDeviceUnsupported      ErrorCode = "TRN_005"
)

// Model Module Error Codes
const (
	ErrCodeModelNotFitted        ErrorCode = "MDL_001"
	ErrCodeModelConfigInvalid    ErrorCode = "MDL_002"
	ErrCodeModelCheckpointFailed ErrorCode = "MDL_003"
	ErrCodeModelUnknownKind      ErrorCode = "MDL_004"
)

// Report Module Error Codes
const (
	ErrCodeReportPlotFailed     ErrorCode = "RPT_001"
	ErrCodeArtifactStoreFailed  ErrorCode = "RPT_002"
	ErrCodeArtifactNotFound     ErrorCode = "RPT_003"
	ErrCodeReportSeriesMismatch ErrorCode = "RPT_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeCacheMiss:          http.StatusNotFound,
	ErrCodeCanceled:           http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeMoleculeInvalidSMILES:       http.StatusBadRequest,
	ErrCodeMoleculeUnknownElement:      http.StatusBadRequest,
	ErrCodeMoleculeValenceViolation:    http.StatusBadRequest,
	ErrCodeMoleculeDegenerateGraph:     http.StatusUnprocessableEntity,
	ErrCodeFingerprintGenerationFailed: http.StatusInternalServerError,
	ErrCodeFeaturizationFailed:         http.StatusInternalServerError,

	ErrCodeDatasetReadFailed:    http.StatusBadRequest,
	ErrCodeDatasetColumnMissing: http.StatusBadRequest,
	ErrCodeDatasetEmpty:         http.StatusUnprocessableEntity,
	ErrCodeDatasetSplitInvalid:  http.StatusBadRequest,
	ErrCodeDatasetCollateFailed: http.StatusUnprocessableEntity,

	ErrCodeTrainingEmptyLoader:    http.StatusUnprocessableEntity,
	ErrCodeTrainingShapeMismatch:  http.StatusInternalServerError,
	ErrCodeTrainingDeviceMismatch: http.StatusInternalServerError,
	ErrCodeTrainingDiverged:       http.StatusInternalServerError,
	ErrCodeDeviceUnsupported:      http.StatusBadRequest,

	ErrCodeModelNotFitted:        http.StatusServiceUnavailable,
	ErrCodeModelConfigInvalid:    http.StatusBadRequest,
	ErrCodeModelCheckpointFailed: http.StatusInternalServerError,
	ErrCodeModelUnknownKind:      http.StatusBadRequest,

	ErrCodeReportPlotFailed:     http.StatusInternalServerError,
	ErrCodeArtifactStoreFailed:  http.StatusInternalServerError,
	ErrCodeArtifactNotFound:     http.StatusNotFound,
	ErrCodeReportSeriesMismatch: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "operation timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeCacheMiss:          "cache miss",
	ErrCodeCanceled:           "operation canceled",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeMoleculeInvalidSMILES:       "invalid SMILES",
	ErrCodeMoleculeUnknownElement:      "unknown element symbol",
	ErrCodeMoleculeValenceViolation:    "valence violation",
	ErrCodeMoleculeDegenerateGraph:     "molecular graph has no bonds",
	ErrCodeFingerprintGenerationFailed: "failed to generate fingerprint",
	ErrCodeFeaturizationFailed:         "featurization failed",

	ErrCodeDatasetReadFailed:    "failed to read dataset",
	ErrCodeDatasetColumnMissing: "required column missing",
	ErrCodeDatasetEmpty:         "dataset is empty",
	ErrCodeDatasetSplitInvalid:  "invalid train/test split",
	ErrCodeDatasetCollateFailed: "failed to collate graph batch",

	ErrCodeTrainingEmptyLoader:    "loader yielded no batches",
	ErrCodeTrainingShapeMismatch:  "tensor shape mismatch",
	ErrCodeTrainingDeviceMismatch: "batch and model are on different devices",
	ErrCodeTrainingDiverged:       "training loss is not finite",
	ErrCodeDeviceUnsupported:      "unsupported compute device",

	ErrCodeModelNotFitted:        "model has not been fitted",
	ErrCodeModelConfigInvalid:    "invalid model configuration",
	ErrCodeModelCheckpointFailed: "checkpoint read/write failed",
	ErrCodeModelUnknownKind:      "unknown model kind",

	ErrCodeReportPlotFailed:     "failed to render plot",
	ErrCodeArtifactStoreFailed:  "failed to store artifact",
	ErrCodeArtifactNotFound:     "artifact not found",
	ErrCodeReportSeriesMismatch: "report series mismatch",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
