// Package session owns the client's authenticated session.
//
// A Store holds exactly one models.Session, which is either absent or fully
// populated. Set replaces the whole session in one step; there are no
// per-field setters, so observers can never see an identity without its
// token. Observers registered with Subscribe are called after every change,
// outside the store's lock.
//
// A Store may be backed by a Persister (see Vault) so that the session
// survives restarts. Persistence happens before the in-memory value changes:
// if it fails, the store is left exactly as it was.
package session
