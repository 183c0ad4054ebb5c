package response

const (
	HeaderContentType  = "Content-Type"
	HeaderAccept       = "Accept"
	HeaderValueJson    = "application/json"
	HeaderValueSSE     = "text/event-stream"
	HeaderCacheControl = "Cache-Control"
	HeaderConnection   = "Connection"
	HeaderRequestID    = "X-Request-Id"
)
