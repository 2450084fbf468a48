package realtime

import "strings"

// Command names the purpose of a frame.
type Command string

// Client to server.
const (
	CmdConnect     Command = "CONNECT"
	CmdSubscribe   Command = "SUBSCRIBE"
	CmdUnsubscribe Command = "UNSUBSCRIBE"
	CmdSend        Command = "SEND"
	CmdDisconnect  Command = "DISCONNECT"
)

// Server to client.
const (
	CmdConnected Command = "CONNECTED"
	CmdMessage   Command = "MESSAGE"
	CmdReceipt   Command = "RECEIPT"
	CmdError     Command = "ERROR"
)

// Well known header names. Lookups through Frame.Header ignore case.
const (
	HeaderAuthorization = "Authorization"
	HeaderAuthToken     = "X-Auth-Token"
	HeaderDestination   = "destination"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderMessage       = "message"
	HeaderUserName      = "user-name"
	HeaderSession       = "session"
	HeaderSender        = "sender"
)

// Frame is one JSON message on the real-time connection.
type Frame struct {
	Command Command           `json:"command"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// Header returns the value of name, matched case-insensitively.
func (f Frame) Header(name string) string {
	if v, ok := f.Headers[name]; ok {
		return v
	}
	for k, v := range f.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func errorFrame(message string) Frame {
	return Frame{Command: CmdError, Headers: map[string]string{HeaderMessage: message}}
}

func receiptFrame(id string) Frame {
	return Frame{Command: CmdReceipt, Headers: map[string]string{HeaderReceiptID: id}}
}
