package access

import (
	"errors"

	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/guard"
)

// Options configures the access table.
type Options struct {
	// Identity resolves the acting user. Required.
	Identity IdentityProvider

	// ProtectedAccount is the user ID that ADMIN (but not SUPER_ADMIN) may
	// not delete. Default: "admin".
	ProtectedAccount string
}

// NewTable builds the authorization table.
func NewTable(opts Options) (*guard.Table[Request], error) {
	if opts.Identity == nil {
		return nil, errors.New("access: identity provider is required")
	}
	if opts.ProtectedAccount == "" {
		opts.ProtectedAccount = DefaultProtectedAccount
	}
	return guard.NewTable(domains.Access, Shapes(), rules(opts)...)
}

func rules(opts Options) []guard.Rule[Request] {
	notSelf := func(userID string) bool {
		return userID != opts.Identity.CurrentUserID()
	}

	return []guard.Rule[Request]{
		guard.Case[Request]("access.get_user.guest",
			func(r GetUser) bool { return !r.AuthLevel.AtLeast(User) },
			guard.OutcomeError,
			guard.Message[GetUser]("❌ Guests cannot access user data")),
		guard.Case[Request]("access.get_user.other_user",
			func(r GetUser) bool { return r.AuthLevel == User && notSelf(r.UserID) },
			guard.OutcomeError,
			guard.Message[GetUser]("❌ Users can only access their own data")),
		guard.Case[Request]("access.get_user.allow", nil,
			guard.OutcomeSuccess,
			func(r GetUser) string { return "✅ Authorized to get user " + r.UserID }),

		guard.Case[Request]("access.update_user.guest",
			func(r UpdateUser) bool { return !r.AuthLevel.AtLeast(User) },
			guard.OutcomeError,
			guard.Message[UpdateUser]("❌ Guests cannot update user data")),
		guard.Case[Request]("access.update_user.other_user",
			func(r UpdateUser) bool { return r.AuthLevel == User && notSelf(r.UserID) },
			guard.OutcomeError,
			guard.Message[UpdateUser]("❌ Users can only update their own data")),
		guard.Case[Request]("access.update_user.allow", nil,
			guard.OutcomeSuccess,
			func(r UpdateUser) string { return "✅ Authorized to update user " + r.UserID }),

		guard.Case[Request]("access.delete_user.not_admin",
			func(r DeleteUser) bool { return !r.AuthLevel.AtLeast(Admin) },
			guard.OutcomeError,
			guard.Message[DeleteUser]("❌ Only admins can delete users")),
		guard.Case[Request]("access.delete_user.protected",
			func(r DeleteUser) bool { return r.AuthLevel == Admin && r.UserID == opts.ProtectedAccount },
			guard.OutcomeError,
			guard.Message[DeleteUser]("❌ Admins cannot delete admin users")),
		guard.Case[Request]("access.delete_user.allow", nil,
			guard.OutcomeSuccess,
			func(r DeleteUser) string { return "✅ Authorized to delete user " + r.UserID }),

		guard.Case[Request]("access.get_all_users.guest",
			func(r GetAllUsers) bool { return !r.AuthLevel.AtLeast(User) },
			guard.OutcomeError,
			guard.Message[GetAllUsers]("❌ Guests cannot access user list")),
		guard.Case[Request]("access.get_all_users.user",
			func(r GetAllUsers) bool { return !r.AuthLevel.AtLeast(Admin) },
			guard.OutcomeError,
			guard.Message[GetAllUsers]("❌ Regular users cannot access user list")),
		guard.Case[Request]("access.get_all_users.allow", nil,
			guard.OutcomeSuccess,
			guard.Message[GetAllUsers]("✅ Authorized to get all users")),
	}
}

// Samples returns the demonstration requests in presentation order.
func Samples() []Request {
	return []Request{
		GetUser{UserID: "user123", AuthLevel: User},
		GetUser{UserID: "other_user", AuthLevel: User},
		UpdateUser{UserID: "user123", Data: "new_data", AuthLevel: User},
		DeleteUser{UserID: "user123", AuthLevel: User},
		DeleteUser{UserID: "user123", AuthLevel: Admin},
		GetAllUsers{AuthLevel: Guest},
		GetAllUsers{AuthLevel: Admin},
	}
}
