package utils

import (
	"log"
	"strings"
)

// LogEvent prints one standardized line with module/action/request_id.
// Keep messages summarized; never log tokens or credentials.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
