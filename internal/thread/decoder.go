// Package thread reconstructs inquiry conversations: it decodes the legacy
// free-text message format, normalizes both storage shapes into one ordered
// message list, correlates independently uploaded attachments with the
// messages they accompany, and keeps per-inquiry view state consistent
// across optimistic sends and server reloads.
package thread

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Legacy blobs separate messages with an embedded marker line. The bracketed
// unix-millisecond timestamp is optional; when present it belongs to the text
// that FOLLOWS the marker (the marker announces an upcoming message, it does
// not timestamp the text before it).
//
//	"\n\n--- New Message [1700000000000] ---\n"
//	"\n\n--- New Message ---\n"
var (
	markerPattern   = regexp.MustCompile(`\n\n--- New Message(?: \[(\d+)\])? ---\n`)
	residualPattern = regexp.MustCompile(`(?m)^--- New Message(?: \[\d*\])? ---[ \t]*$`)
)

// LegacyMarker renders a marker announcing a message at the given time.
// Mail intake uses it to append to legacy blobs, so decoding and encoding
// stay in one place.
func LegacyMarker(at time.Time) string {
	return "\n\n--- New Message [" + strconv.FormatInt(at.UnixMilli(), 10) + "] ---\n"
}

// Fragment is one discrete text entry decoded from a legacy blob.
type Fragment struct {
	Text      string
	Timestamp time.Time
	// Inferred is true when the blob carried no timestamp for this fragment
	// and the decode time was substituted.
	Inferred bool
}

// Decode splits a legacy text blob into ordered fragments. It never fails:
// a string without markers degrades to a single fragment holding the whole
// text. Fragments that trim to empty are dropped. Fragments lacking a
// marker timestamp receive the decode time, offset by emission order so
// their relative ordering survives even if a consumer later sorts by time.
func Decode(text string) []Fragment {
	return DecodeAt(text, time.Now())
}

// DecodeAt is Decode with an explicit decode time, so callers that need
// deterministic output (reconcile must be idempotent) can pin it.
func DecodeAt(text string, decodeTime time.Time) []Fragment {
	type segment struct {
		text string
		ts   int64 // unix ms, 0 = none
	}

	var segments []segment
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)

	// Text before the first marker is fragment zero and never receives a
	// marker-supplied timestamp.
	prevEnd := 0
	pendingTS := int64(0)
	for _, m := range matches {
		segments = append(segments, segment{text: text[prevEnd:m[0]], ts: pendingTS})
		pendingTS = 0
		if m[2] >= 0 {
			if ms, err := strconv.ParseInt(text[m[2]:m[3]], 10, 64); err == nil {
				pendingTS = ms
			}
		}
		prevEnd = m[1]
	}
	segments = append(segments, segment{text: text[prevEnd:], ts: pendingTS})

	fragments := make([]Fragment, 0, len(segments))
	inferred := 0
	for _, seg := range segments {
		body := strings.TrimSpace(residualPattern.ReplaceAllString(seg.text, ""))
		if body == "" {
			continue
		}
		frag := Fragment{Text: body}
		if seg.ts > 0 {
			frag.Timestamp = time.UnixMilli(seg.ts)
		} else {
			frag.Timestamp = decodeTime.Add(time.Duration(inferred) * time.Millisecond)
			frag.Inferred = true
			inferred++
		}
		fragments = append(fragments, frag)
	}
	return fragments
}
