package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderClientID lets a client name itself. There is no authentication; the
// value only scopes rate-limit buckets and idempotency keys.
const HeaderClientID = "X-Client-ID"

const maxClientIDLen = 64

// ClientID identifies the caller: "client:<X-Client-ID>" when the header is
// present and sane, "ip:<addr>" otherwise.
func ClientID(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader(HeaderClientID)); h != "" && len(h) <= maxClientIDLen {
		return "client:" + h
	}
	return "ip:" + c.ClientIP()
}
