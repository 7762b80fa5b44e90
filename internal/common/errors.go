package common

// ErrorKind is a comparable error value naming a class of failure. Call sites wrap it with
// errors.WrapPrefix so that the stack trace and detail are kept while errors.Is still matches
// the kind.
type ErrorKind string

func (k ErrorKind) Error() string {
	return string(k)
}
