package registration

// State is the position of the submission workflow.
//
//	Idle -> Validating -> Rejected -> Idle
//	                   -> DecodingImage -> Idle
//	                                    -> DecodeFailed -> Idle
type State int

const (
	Idle State = iota
	Validating
	Rejected
	DecodingImage
	DecodeFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Rejected:
		return "rejected"
	case DecodingImage:
		return "decoding_image"
	case DecodeFailed:
		return "decode_failed"
	default:
		return "unknown"
	}
}

// Status is how a submission ended.
type Status string

const (
	StatusAdded        Status = "added"
	StatusRejected     Status = "rejected"
	StatusDecodeFailed Status = "decode_failed"
)

// User-facing messages.
const (
	MsgAdded        = "Student added successfully!"
	MsgFixErrors    = "Please fix all errors first."
	MsgDecodeFailed = "Could not read the selected photo."
	MsgSaveFailed   = "Could not save the student. Please try again."
	MsgEditing      = "Student loaded for editing. Make changes and click Add Student."
	MsgRemoved      = "Student removed!"
)
