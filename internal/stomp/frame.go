// Package stomp implements the minimal STOMP 1.2 text framing used by
// the order push channel: building outbound control frames and parsing
// inbound payloads. No I/O, no state.
package stomp

import "strings"

// Commands exchanged with the push peer.
const (
	CmdConnect    = "CONNECT"
	CmdConnected  = "CONNECTED"
	CmdSubscribe  = "SUBSCRIBE"
	CmdDisconnect = "DISCONNECT"
	CmdMessage    = "MESSAGE"
	CmdError      = "ERROR"
)

const frameTerminator = "\x00"

// Header is one key:value header line. Headers are kept as an ordered
// slice so outbound frames preserve caller insertion order.
type Header struct {
	Key   string
	Value string
}

// Frame is one STOMP protocol unit: command, headers, body.
type Frame struct {
	Command string
	Headers []Header
	Body    string
}

// Header returns the first value for key, or "".
func (f Frame) Header(key string) string {
	for _, h := range f.Headers {
		if h.Key == key {
			return h.Value
		}
	}
	return ""
}

// BuildFrame emits COMMAND, header lines in insertion order, a blank
// line, the body, and the NUL terminator. Header values here are opaque
// tokens; no escaping is applied.
func BuildFrame(command string, headers []Header, body string) string {
	var b strings.Builder
	b.WriteString(command)
	b.WriteByte('\n')
	for _, h := range headers {
		b.WriteString(h.Key)
		b.WriteByte(':')
		b.WriteString(h.Value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteString(frameTerminator)
	return b.String()
}

// ParseFrames extracts zero or more frames from one raw socket payload.
// Peers may prepend a stray heartbeat newline and may concatenate
// several NUL-terminated frames into one message; pure heartbeat
// payloads yield no frames.
func ParseFrames(payload string) []Frame {
	var frames []Frame
	for _, chunk := range strings.Split(payload, frameTerminator) {
		chunk = strings.TrimLeft(chunk, "\r\n ")
		if chunk == "" {
			continue
		}
		head, body, _ := strings.Cut(chunk, "\n\n")
		lines := strings.Split(head, "\n")
		f := Frame{Command: strings.TrimRight(lines[0], "\r"), Body: body}
		for _, line := range lines[1:] {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			// split on the first colon only; colons are legal in values
			k, v, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			f.Headers = append(f.Headers, Header{Key: k, Value: v})
		}
		frames = append(frames, f)
	}
	return frames
}

// ConnectFrame builds the session handshake frame. The client does not
// implement heartbeat timers, so it advertises 0,0.
func ConnectFrame(host, token string) string {
	return BuildFrame(CmdConnect, []Header{
		{"accept-version", "1.2"},
		{"host", host},
		{"Authorization", "Bearer " + token},
		{"heart-beat", "0,0"},
	}, "")
}

// SubscribeFrame builds the single private-queue subscription frame.
func SubscribeFrame(id, destination string) string {
	return BuildFrame(CmdSubscribe, []Header{
		{"id", id},
		{"destination", destination},
		{"ack", "auto"},
	}, "")
}

// DisconnectFrame builds the graceful teardown frame.
func DisconnectFrame() string {
	return BuildFrame(CmdDisconnect, nil, "")
}
