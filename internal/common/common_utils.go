package common

import (
	"fmt"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// Mention formats a user id the way the chat platform renders it.
func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}
