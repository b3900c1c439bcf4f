package speech_to_text

type Outcome int

const (
	Recognized Outcome = iota
	NoSpeechDetected
	ServiceUnavailable
	OtherFailure
)

func (o Outcome) String() string {
	switch o {
	case Recognized:
		return "recognized"
	case NoSpeechDetected:
		return "no_speech_detected"
	case ServiceUnavailable:
		return "service_unavailable"
	default:
		return "other_failure"
	}
}

// Result is the outcome of one transcription attempt. Text is lower-cased and
// only set when Outcome is Recognized; Err carries the cause otherwise.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}
