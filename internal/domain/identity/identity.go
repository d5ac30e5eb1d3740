package identity

// Identity is a caller whose bearer token has been verified.
type Identity struct {
	UID   string
	Email string
}
