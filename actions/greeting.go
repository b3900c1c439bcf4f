package actions

import "time"

func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good morning!"
	case hour < 18:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}

func TimePhrase(t time.Time) string {
	return "The time is " + t.Format("03:04 PM")
}

func DatePhrase(t time.Time) string {
	return "Today's date is " + t.Format("Monday, January 02, 2006")
}
