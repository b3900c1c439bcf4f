package commands

import "strings"

type Kind int

const (
	None Kind = iota
	Hello
	Time
	Date
	Search
	Open
	Stop
)

func (k Kind) String() string {
	switch k {
	case Hello:
		return "hello"
	case Time:
		return "time"
	case Date:
		return "date"
	case Search:
		return "search"
	case Open:
		return "open"
	case Stop:
		return "stop"
	default:
		return "none"
	}
}

type rule struct {
	kind     Kind
	keywords []string
}

// Matching is by substring, so the order of this table decides ties:
// "hello what time is it" is a greeting, not a time request.
var rules = []rule{
	{Hello, []string{"hello"}},
	{Time, []string{"time"}},
	{Date, []string{"date"}},
	{Search, []string{"search"}},
	{Open, []string{"open"}},
	{Stop, []string{"stop", "exit", "quit"}},
}

// Classify returns the first command whose keyword occurs in transcript.
func Classify(transcript string) Kind {
	transcript = strings.ToLower(transcript)

	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(transcript, keyword) {
				return r.kind
			}
		}
	}

	return None
}
