package middlewares

const (
	CtxRequestID = "request_id"

	ctxUserKey   = "auth.user"
	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
	ctxRoleKey   = "auth.role"
)
