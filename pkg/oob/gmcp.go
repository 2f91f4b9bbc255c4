package oob

import (
	"encoding/json"
	"fmt"
	"sort"
)

// GMCPPackage maps event types to GMCP package names.
func GMCPPackage(evType EventType) string {
	switch evType {
	case EvRoomText:
		return "Comm.Room.Text"
	case EvPrivateText:
		return "Comm.Private.Text"
	case EvRoom:
		return "Room.Info"
	case EvLogin:
		return "Char.Login"
	case EvLogout:
		return "Char.Logout"
	case EvVitals:
		return "Char.Vitals"
	default:
		return ""
	}
}

// EncodeGMCP encodes an event as a GMCP telnet subnegotiation sequence.
// Format: IAC SB 201 <package> <space> <json> IAC SE
// Returns nil if the event has no GMCP mapping or no structured data.
func EncodeGMCP(ev Event) []byte {
	pkg := GMCPPackage(ev.Type)
	if pkg == "" || ev.Data == nil {
		return nil
	}

	jsonData, err := json.Marshal(ev.Data)
	if err != nil {
		return nil
	}

	payload := fmt.Sprintf("%s %s", pkg, string(jsonData))
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, IAC, SB, TeloptGMCP)
	buf = append(buf, []byte(payload)...)
	buf = append(buf, IAC, SE)
	return buf
}

// EncodeGMCPRoomInfo builds a GMCP Room.Info message for a location.
// Exit directions are sorted so the payload is stable.
func EncodeGMCPRoomInfo(name, description string, exits []string) []byte {
	data := map[string]any{
		"name": name,
		"desc": description,
	}
	if len(exits) > 0 {
		sorted := make([]string, len(exits))
		copy(sorted, exits)
		sort.Strings(sorted)
		data["exits"] = sorted
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	payload := fmt.Sprintf("Room.Info %s", string(jsonData))
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, IAC, SB, TeloptGMCP)
	buf = append(buf, []byte(payload)...)
	buf = append(buf, IAC, SE)
	return buf
}

// ParseGMCPMessage parses an incoming GMCP message from client subnegotiation.
// The data is the raw bytes between SB 201 and IAC SE.
// Returns package name and JSON data.
func ParseGMCPMessage(data []byte) (pkg string, jsonData []byte) {
	for i, b := range data {
		if b == ' ' {
			return string(data[:i]), data[i+1:]
		}
	}
	return string(data), nil
}
