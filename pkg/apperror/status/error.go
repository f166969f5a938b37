package status

import "fmt"

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     request validation
//   1000-1999: internal (extraction, storage)
//   2000-2999: generation
const (
	BadRequestBase      ErrorCode = 0
	InternalErrorBase   ErrorCode = 1000
	GenerationErrorBase ErrorCode = 2000
)

// Client/validation errors start at 0
const (
	InvalidRequestBody  ErrorCode = BadRequestBase + iota // 0
	MissingInput                                          // 1
	InvalidParams                                         // 2
	UnsupportedFileType                                   // 3
	FileTooLarge                                          // 4
	NoExtractableText                                     // 5
	InvalidFlashcard                                      // 6
	InvalidExportFormat                                   // 7
	FlashcardNotFound                                     // 8
)

// Internal errors start at 1000
const (
	Internal            ErrorCode = InternalErrorBase + iota // 1000
	ReadUploadFailed                                         // 1001
	SaveFlashcardFailed                                      // 1002
	ListFlashcardsFailed                                     // 1003
	GetFlashcardFailed                                       // 1004
	DatabaseUnavailable                                      // 1005
)

// Generation errors start at 2000
const (
	GenerationFailed   ErrorCode = GenerationErrorBase + iota // 2000
	NoFlashcardsParsed                                        // 2001
)

// String renders the code the way it appears in error payloads, e.g. MF-0002.
func (c ErrorCode) String() string {
	return fmt.Sprintf("MF-%04d", int(c))
}

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}
