package oob

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGMCPPackageMapping(t *testing.T) {
	tests := []struct {
		evType EventType
		want   string
	}{
		{EvRoomText, "Comm.Room.Text"},
		{EvPrivateText, "Comm.Private.Text"},
		{EvRoom, "Room.Info"},
		{EvLogin, "Char.Login"},
		{EvLogout, "Char.Logout"},
		{EvVitals, "Char.Vitals"},
		{EvText, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GMCPPackage(tt.evType))
	}
}

func TestEncodeGMCP(t *testing.T) {
	ev := Event{
		Type:  EvRoomText,
		Actor: "julie",
		Text:  "Julie says: hello",
		Data: map[string]any{
			"from": "julie",
			"text": "hello",
		},
	}
	buf := EncodeGMCP(ev)
	require.NotNil(t, buf)
	assert.Equal(t, []byte{IAC, SB, TeloptGMCP}, buf[:3], "GMCP prefix")
	assert.Equal(t, []byte{IAC, SE}, buf[len(buf)-2:], "GMCP suffix")

	payload := string(buf[3 : len(buf)-2])
	require.True(t, strings.HasPrefix(payload, "Comm.Room.Text "), payload)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload[len("Comm.Room.Text "):]), &parsed))
	assert.Equal(t, "hello", parsed["text"])
}

func TestEncodeGMCPNoData(t *testing.T) {
	assert.Nil(t, EncodeGMCP(Event{Type: EvText, Text: "hello"}))
	assert.Nil(t, EncodeGMCP(Event{Type: EvRoomText, Text: "no structured data"}))
}

func TestEncodeGMCPRoomInfo(t *testing.T) {
	buf := EncodeGMCPRoomInfo("Town square", "The old town square.", []string{"south", "north"})
	require.NotNil(t, buf)
	payload := string(buf[3 : len(buf)-2])
	require.True(t, strings.HasPrefix(payload, "Room.Info "), payload)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload[len("Room.Info "):]), &parsed))
	assert.Equal(t, "Town square", parsed["name"])
	assert.Equal(t, []any{"north", "south"}, parsed["exits"], "exits are sorted")
}

func TestParseGMCPMessage(t *testing.T) {
	pkg, jsonData := ParseGMCPMessage([]byte("Core.Hello {\"client\":\"Mudlet\"}"))
	assert.Equal(t, "Core.Hello", pkg)
	assert.Equal(t, `{"client":"Mudlet"}`, string(jsonData))

	pkg, jsonData = ParseGMCPMessage([]byte("Core.Ping"))
	assert.Equal(t, "Core.Ping", pkg)
	assert.Nil(t, jsonData)
}

func TestEncodeMSDP(t *testing.T) {
	buf := EncodeMSDP(map[string]string{"ROOM_NAME": "Town square"})
	assert.Equal(t, []byte{IAC, SB, TeloptMSDP}, buf[:3], "MSDP prefix")
	assert.Equal(t, []byte{IAC, SE}, buf[len(buf)-2:], "MSDP suffix")
}

func TestEncodeMSDPEvent(t *testing.T) {
	buf := EncodeMSDPEvent(Event{Type: EvLogin, Actor: "julie"})
	require.NotNil(t, buf)
	assert.Contains(t, string(buf), "CHARACTER_NAME")
	assert.Contains(t, string(buf), "julie")

	assert.Nil(t, EncodeMSDPEvent(Event{Type: EvText, Text: "plain"}))
}

func TestParseMSDP(t *testing.T) {
	data := []byte{MSDPVar}
	data = append(data, []byte("ROOM_NAME")...)
	data = append(data, MSDPVal)
	data = append(data, []byte("Town square")...)
	data = append(data, MSDPVar)
	data = append(data, []byte("HEALTH")...)
	data = append(data, MSDPVal)
	data = append(data, []byte("100")...)

	result := ParseMSDP(data)
	assert.Equal(t, "Town square", result["ROOM_NAME"])
	assert.Equal(t, "100", result["HEALTH"])
}

func TestMCPInit(t *testing.T) {
	msg := EncodeMCPInit("testkey123")
	assert.True(t, strings.HasPrefix(msg, "#$#mcp"), msg)
	assert.Contains(t, msg, "testkey123")
}

func TestEncodeMCPEvent(t *testing.T) {
	msg := EncodeMCPEvent("authkey", Event{Type: EvPrivateText, Actor: "julie", Text: "psst"})
	assert.True(t, strings.HasPrefix(msg, "#$#comm-private authkey"), msg)
	assert.Contains(t, msg, "text: psst")

	assert.Empty(t, EncodeMCPEvent("authkey", Event{Type: EvText, Text: "plain"}))
}

func TestCapabilities(t *testing.T) {
	caps := NewCapabilities()
	assert.False(t, caps.HasAny())
	caps.GMCP = true
	assert.True(t, caps.HasAny())
}
