// Package auth manages gateway user accounts.
//
// It covers registration, the single password check performed at login,
// and the username lookups other packages use for existence checks. There
// are no sessions or roles: a successful login only confirms the
// credentials.
//
// Passwords are hashed through the PasswordHasher capability. The default
// implementation writes Argon2id PHC strings and also verifies bcrypt
// digests carried over from earlier deployments.
package auth
