package dto

// Identity is the current user reference. The zero value is anonymous.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

func (i Identity) Present() bool {
	return i.UserID != ""
}

// Same reports whether two identities would scope remote access identically.
func (i Identity) Same(other Identity) bool {
	return i.UserID == other.UserID && i.Token == other.Token
}

type SignInInput struct {
	UserID string
	Email  string
	Token  string
}
