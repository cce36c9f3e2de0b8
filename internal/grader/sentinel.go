package grader

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// sentinelPrefix is the fixed part of the delimiter between user debug
// output and the structured result line. The random suffix makes the full
// sentinel collision-resistant against user code printing the prefix.
const sentinelPrefix = "===RESULT_JSON_"

func newSentinel() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// rand.Read does not fail on supported platforms; keep the
		// historical fixed delimiter as a fallback.
		return sentinelPrefix + "START==="
	}
	return sentinelPrefix + hex.EncodeToString(buf[:]) + "==="
}

// splitSentinel separates harness stdout into the user debug portion and
// the result line that follows the sentinel. found is false when the
// sentinel never appeared (the harness died before producing output).
func splitSentinel(stdout, sentinel string) (debug, result string, found bool) {
	lines := strings.Split(stdout, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != sentinel {
			continue
		}
		debug = strings.Join(lines[:i], "\n")
		// the harness always writes a newline before the sentinel, so
		// drop the blank line it produces at the end of the debug part
		debug = strings.TrimRight(debug, "\n")
		result = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		return debug, result, true
	}
	return stdout, "", false
}
