package domain

// AuthResult is the outcome of a credential check.
type AuthResult int

const (
	// AuthStorageError means the check could not be completed.
	AuthStorageError AuthResult = iota
	// AuthSuccess means the username exists and the password matches.
	AuthSuccess
	// AuthUserNotFound means no account with that username exists.
	AuthUserNotFound
	// AuthIncorrectPassword means the account exists but the password does not match.
	AuthIncorrectPassword
)

func (r AuthResult) String() string {
	switch r {
	case AuthSuccess:
		return "success"
	case AuthUserNotFound:
		return "user_not_found"
	case AuthIncorrectPassword:
		return "incorrect_password"
	case AuthStorageError:
		return "storage_error"
	default:
		return "unknown"
	}
}
