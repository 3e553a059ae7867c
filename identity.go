package connectify

// userIdentity adapts a User record to the Identity interface.
type userIdentity struct {
	user *User
}

var _ Identity = (*userIdentity)(nil)

// NewUserIdentity wraps a user record as an Identity.
func NewUserIdentity(user *User) Identity {
	return &userIdentity{user: user}
}

func (i *userIdentity) ID() string {
	if i.user == nil {
		return ""
	}
	return i.user.ID.String()
}

func (i *userIdentity) Username() string {
	if i.user == nil {
		return ""
	}
	return i.user.Username
}

func (i *userIdentity) Email() string {
	if i.user == nil {
		return ""
	}
	return i.user.Email
}
