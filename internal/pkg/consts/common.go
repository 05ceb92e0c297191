package consts

// gin.Context 中的键
const (
	BaseURL    = "base_url"
	SessionKey = "session"
	UserIDKey  = "user_id"
)
