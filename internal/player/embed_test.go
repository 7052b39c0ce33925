package player

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bridgePipe wires an Embed to the host side of a net.Pipe.
func bridgePipe(t *testing.T) (*Embed, net.Conn) {
	t.Helper()
	client, host := net.Pipe()
	e := NewEmbed(client)
	t.Cleanup(func() {
		e.Close()
		host.Close()
	})
	return e, host
}

func readCommand(t *testing.T, host net.Conn) embedCommand {
	t.Helper()
	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(host).ReadBytes('\n')
	require.NoError(t, err)
	var cmd embedCommand
	require.NoError(t, json.Unmarshal(line, &cmd))
	return cmd
}

func writeEvent(t *testing.T, host net.Conn, ev embedEvent) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, host.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err = host.Write(append(data, '\n'))
	require.NoError(t, err)
}

func waitEvent(t *testing.T, e *Embed) Event {
	t.Helper()
	select {
	case ev := <-e.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for adapter event")
		return Event{}
	}
}

func TestEmbed_Load(t *testing.T) {
	e, host := bridgePipe(t)

	go func() { _ = e.Load("dQw4w9WgXcQ", 7) }()
	cmd := readCommand(t, host)

	assert.Equal(t, "load", cmd.Cmd)
	assert.Equal(t, "dQw4w9WgXcQ", cmd.ID)
	assert.Equal(t, uint64(7), cmd.Gen)
}

func TestEmbed_TransportCommands(t *testing.T) {
	e, host := bridgePipe(t)

	go func() {
		_ = e.Play()
		_ = e.Pause()
		_ = e.SeekTo(90 * time.Second)
		_ = e.SetVolume(55)
	}()

	reader := bufio.NewReader(host)
	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	var cmds []embedCommand
	for i := 0; i < 4; i++ {
		line, err := reader.ReadBytes('\n')
		require.NoError(t, err)
		var cmd embedCommand
		require.NoError(t, json.Unmarshal(line, &cmd))
		cmds = append(cmds, cmd)
	}

	assert.Equal(t, "play", cmds[0].Cmd)
	assert.Equal(t, "pause", cmds[1].Cmd)
	assert.Equal(t, "seek", cmds[2].Cmd)
	assert.InDelta(t, 90.0, cmds[2].Seconds, 0.001)
	assert.Equal(t, "volume", cmds[3].Cmd)
	assert.Equal(t, 55, cmds[3].Percent)
}

func TestEmbed_SetVolumeClamps(t *testing.T) {
	e, host := bridgePipe(t)

	go func() {
		_ = e.SetVolume(150)
		_ = e.SetVolume(-5)
	}()

	reader := bufio.NewReader(host)
	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var cmd embedCommand
	require.NoError(t, json.Unmarshal(line, &cmd))
	assert.Equal(t, 100, cmd.Percent)

	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(line, &cmd))
	assert.Equal(t, 0, cmd.Percent)
}

func TestEmbed_StateEvents(t *testing.T) {
	e, host := bridgePipe(t)

	writeEvent(t, host, embedEvent{Event: "cued", Gen: 3})
	ev := waitEvent(t, e)
	assert.Equal(t, EventReady, ev.Kind)
	assert.Equal(t, uint64(3), ev.Generation)

	writeEvent(t, host, embedEvent{Event: "playing", Gen: 3})
	ev = waitEvent(t, e)
	assert.Equal(t, EventPlaying, ev.Kind)

	writeEvent(t, host, embedEvent{Event: "error", Gen: 3, Code: CodeUnavailable})
	ev = waitEvent(t, e)
	assert.Equal(t, EventError, ev.Kind)
	assert.Equal(t, CodeUnavailable, ev.Code)
}

func TestEmbed_TimeAndDurationUpdates(t *testing.T) {
	e, host := bridgePipe(t)

	writeEvent(t, host, embedEvent{Event: "time", Seconds: 12.5})
	writeEvent(t, host, embedEvent{Event: "duration", Seconds: 200})
	// Property updates publish no adapter events, so force ordering
	// through a state event.
	writeEvent(t, host, embedEvent{Event: "playing", Gen: 1})
	waitEvent(t, e)

	assert.Equal(t, 12500*time.Millisecond, e.Position())
	assert.Equal(t, 200*time.Second, e.Duration())
}

func TestEmbed_MalformedLinesDropped(t *testing.T) {
	e, host := bridgePipe(t)

	require.NoError(t, host.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := host.Write([]byte("this is not json\n"))
	require.NoError(t, err)

	writeEvent(t, host, embedEvent{Event: "paused", Gen: 2})
	ev := waitEvent(t, e)
	assert.Equal(t, EventPaused, ev.Kind)
}

func TestEmbed_SeekUpdatesLocalPosition(t *testing.T) {
	e, host := bridgePipe(t)

	go func() { _ = e.SeekTo(30 * time.Second) }()
	readCommand(t, host)

	assert.Equal(t, 30*time.Second, e.Position())
}
