package access

// IdentityProvider supplies the acting user's ID to the authorization rules.
// A real system resolves it from an authenticated session.
type IdentityProvider interface {
	CurrentUserID() string
}

// StaticIdentity is an IdentityProvider that always reports the same user.
type StaticIdentity string

// CurrentUserID implements IdentityProvider.
func (s StaticIdentity) CurrentUserID() string {
	return string(s)
}

// DefaultCurrentUserID is the acting user when none is configured.
const DefaultCurrentUserID = "current_user_123"

// DefaultProtectedAccount is the account admins may not delete.
const DefaultProtectedAccount = "admin"
