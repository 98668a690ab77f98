package session

// Token is an opaque credential handed out by the platform.
type Token string

func (t Token) String() string {
	return string(t)
}

// Short trims the token down to a loggable form.
func (t Token) Short() string {
	if len(t) < 10 {
		return string(t)
	}
	return string([]byte(t)[:4]) + ".." + string([]byte(t)[len(t)-5:])
}

func (t Token) IsEmpty() bool {
	return len(t) == 0
}
