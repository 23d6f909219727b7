package codec

// Errors
var (
	ErrMalformedHeader     = &CodecError{"malformed header"}
	ErrTruncatedRecord     = &CodecError{"truncated record"}
	ErrMalformedRecord     = &CodecError{"malformed record"}
	ErrMalformedRegistry   = &CodecError{"malformed plugin registry"}
	ErrLengthMismatch      = &CodecError{"header length mismatch"}
	ErrUnsupportedMutation = &CodecError{"unsupported mutation"}
	ErrFieldTooWide        = &CodecError{"field too wide for slot"}
	ErrSnapshotCorrupt     = &CodecError{"snapshot corrupt"}
)

// CodecError represents a record codec error
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}
