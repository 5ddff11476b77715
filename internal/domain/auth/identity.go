package auth

// Identity is the authenticated caller, extracted from verified token claims
// at the transport edge and passed explicitly into services.
type Identity struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
}
