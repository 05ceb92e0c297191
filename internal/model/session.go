package model

import "time"

const (
	SessionProviderLocal    = "local"
	SessionProviderFirebase = "firebase"
)

// Session 已登录主持人的会话
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active 会话在 now 时刻是否仍有效
func (s Session) Active(now time.Time) bool {
	if s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}
