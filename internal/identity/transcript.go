package identity

import (
	"regexp"
	"strings"
)

// A recorded voice-assistant call stores its transcript as alternating
// speaker-tagged lines. When both roles are present the content is
// ground truth for the caller's identity: the spoken name and number
// override any placeholder the call provider attached.

var (
	assistantLine = regexp.MustCompile(`(?im)^\s*(assistant|agent|ai)\s*:`)
	callerLine    = regexp.MustCompile(`(?im)^\s*(caller|customer|user)\s*:\s*(.*)$`)
	introPhrase   = regexp.MustCompile(`(?i)\b(?:my name is|this is|i'?m)\s+([A-Z][\w'-]*(?:\s+[A-Z][\w'-]*)?)`)
	digitRun      = regexp.MustCompile(`[\d][\d\s().+-]{8,}[\d]`)
)

// TranscriptCaller is the identity spoken by the caller in a transcript.
type TranscriptCaller struct {
	Name  string
	Phone string // normalized
}

// IsTranscript reports whether body looks like a dual-speaker call
// transcript: at least one assistant-tagged and one caller-tagged line.
func IsTranscript(body string) bool {
	return assistantLine.MatchString(body) && callerLine.MatchString(body)
}

// ParseTranscript extracts the caller's spoken name and phone number
// from a dual-speaker transcript. Either field may be empty when the
// caller never states it.
func ParseTranscript(body string) TranscriptCaller {
	var tc TranscriptCaller
	for _, m := range callerLine.FindAllStringSubmatch(body, -1) {
		spoken := m[2]
		if tc.Name == "" {
			if im := introPhrase.FindStringSubmatch(spoken); im != nil {
				tc.Name = strings.TrimSpace(im[1])
			}
		}
		if tc.Phone == "" {
			if dm := digitRun.FindString(spoken); dm != "" {
				if p := NormalizePhone(dm); len(p) == 10 {
					tc.Phone = p
				}
			}
		}
		if tc.Name != "" && tc.Phone != "" {
			break
		}
	}
	return tc
}
