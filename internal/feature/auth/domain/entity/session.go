package entity

import "time"

// Session is one logged-in browser. The login cookie references it by ID, so revoking the
// session logs that browser out even while its cookie is still unexpired.
type Session struct {
	ID        string     // 64-character hex string
	UserID    uint       // owner
	UserAgent string     // User-Agent at login
	IPAddress string     // client IP at login
	CreatedAt time.Time  // login time
	ExpiresAt time.Time  // end of validity
	RevokedAt *time.Time // set on logout
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the session is expired at now.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
