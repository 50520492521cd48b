package llm

import (
	"fmt"
	"strings"
)

// DefaultAudience is used when a request names no audience.
const DefaultAudience = "Student"

// BuildPrompt asks for three numbered posts about topic, written for
// audience. The "1." "2." "3." labels are what the segment parser splits on.
func BuildPrompt(topic, audience string) string {
	audience = strings.TrimSpace(audience)
	if audience == "" {
		audience = DefaultAudience
	}
	return fmt.Sprintf(`Generate 3 twitter posts with hashtags and clearly labeled "1." , "2." and "3.". `+
		`Make sure each generated post is less than 280 characters, has short sentences that are found in Twitter posts, `+
		`write it for a %s Audience, and base them on this context: %s`, audience, strings.TrimSpace(topic))
}
