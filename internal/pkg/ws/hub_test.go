package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hubServer 把 ?uid= 的连接注册到 hub，并把服务端 Client 交给测试
func hubServer(t *testing.T, hub *Hub) (string, <-chan *Client) {
	t.Helper()

	registered := make(chan *Client, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := strconv.ParseInt(r.URL.Query().Get("uid"), 10, 64)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{UserID: uid, Conn: conn}
		hub.Register(client)
		registered <- client
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http"), registered
}

func dial(t *testing.T, url string, uid int64, registered <-chan *Client) (*websocket.Conn, *Client) {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url+"?uid="+strconv.FormatInt(uid, 10), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case c := <-registered:
		return conn, c
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not registered")
		return nil, nil
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_Empty(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.IsOnline(1))
	assert.Zero(t, hub.ConnectionCount())

	n, err := hub.SendToUser(1, &Message{Type: "reward"})
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, hub.Unregister(&Client{UserID: 1}))
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()
	url, registered := hubServer(t, hub)

	conn, _ := dial(t, url, 7, registered)
	other, _ := dial(t, url, 8, registered)
	assert.True(t, hub.IsOnline(7))
	assert.Equal(t, 2, hub.ConnectionCount())

	n, err := hub.SendToUser(7, &Message{Type: "reward", Data: map[string]interface{}{"newTotal": 12.5}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msg := readMessage(t, conn)
	assert.Equal(t, "reward", msg.Type)
	assert.Equal(t, 12.5, msg.Data.(map[string]interface{})["newTotal"])

	// 其他用户收不到
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_MultipleDevices(t *testing.T) {
	hub := NewHub()
	url, registered := hubServer(t, hub)

	phone, _ := dial(t, url, 3, registered)
	tablet, tabletClient := dial(t, url, 3, registered)
	assert.Equal(t, 2, hub.ConnectionCount())

	n, err := hub.SendToUser(3, &Message{Type: "withdrawal_update", Data: "WD-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "WD-1", readMessage(t, phone).Data)
	assert.Equal(t, "WD-1", readMessage(t, tablet).Data)

	assert.True(t, hub.Unregister(tabletClient))
	assert.False(t, hub.Unregister(tabletClient))
	assert.True(t, hub.IsOnline(3))
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestHub_DropsBrokenConnection(t *testing.T) {
	hub := NewHub()
	url, registered := hubServer(t, hub)

	_, client := dial(t, url, 5, registered)
	require.NoError(t, client.Conn.Close())

	n, err := hub.SendToUser(5, &Message{Type: "reward"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, hub.IsOnline(5))
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()
	url, registered := hubServer(t, hub)

	conn, _ := dial(t, url, 9, registered)
	hub.CloseAll()
	assert.Zero(t, hub.ConnectionCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
