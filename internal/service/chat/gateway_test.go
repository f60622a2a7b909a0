package chat

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"heartlink_server/internal/dao/mysql/repository"
	"heartlink_server/internal/dto/respond"
	"heartlink_server/internal/model"
	"heartlink_server/internal/service/thread"
	"heartlink_server/pkg/errorx"
)

// fakeUserRepo 任何用户名都存在，昵称与用户名一致
type fakeUserRepo struct{}

func (f *fakeUserRepo) FindByUsername(username string) (*model.UserInfo, error) {
	return &model.UserInfo{Username: username, Nickname: username}, nil
}

func (f *fakeUserRepo) Create(user *model.UserInfo) error { return nil }

// memMessageRepo 内存消息仓储，只实现网关路径用到的行为
type memMessageRepo struct {
	mu       sync.Mutex
	messages map[int64]*model.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[int64]*model.Message)}
}

func (f *memMessageRepo) GetMessage(id int64) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "消息不存在")
	}
	clone := *m
	return &clone, nil
}

func (f *memMessageRepo) FindThread(currentUsername, otherUsername string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Message
	for _, m := range f.messages {
		fromMe := m.SenderUsername == currentUsername && m.RecipientUsername == otherUsername && !m.SenderDeleted
		toMe := m.SenderUsername == otherUsername && m.RecipientUsername == currentUsername && !m.RecipientDeleted
		if fromMe || toMe {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SentAt.Equal(result[j].SentAt) {
			return result[i].Id < result[j].Id
		}
		return result[i].SentAt.Before(result[j].SentAt)
	})
	return result, nil
}

func (f *memMessageRepo) FindForUser(username, container string, page, pageSize int) ([]model.Message, int64, error) {
	return nil, 0, nil
}

func (f *memMessageRepo) CountUnread(username string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.messages {
		if m.RecipientUsername == username && !m.RecipientDeleted && !m.ReadAt.Valid {
			count++
		}
	}
	return count, nil
}

func (f *memMessageRepo) NewStore() repository.MessageStore {
	return &memMessageStore{repo: f}
}

type memMessageStore struct {
	repo    *memMessageRepo
	pending []func() int64
}

func (s *memMessageStore) AddMessage(message *model.Message) {
	clone := *message
	s.pending = append(s.pending, func() int64 {
		s.repo.messages[clone.Id] = &clone
		return 1
	})
}

func (s *memMessageStore) DeleteMessage(message *model.Message) {
	id := message.Id
	s.pending = append(s.pending, func() int64 {
		if _, ok := s.repo.messages[id]; !ok {
			return 0
		}
		delete(s.repo.messages, id)
		return 1
	})
}

func (s *memMessageStore) MarkRead(ids []int64, readAt time.Time) {
	copied := append([]int64(nil), ids...)
	s.pending = append(s.pending, func() int64 {
		var n int64
		for _, id := range copied {
			if m, ok := s.repo.messages[id]; ok && !m.ReadAt.Valid {
				m.ReadAt = sql.NullTime{Time: readAt, Valid: true}
				n++
			}
		}
		return n
	})
}

func (s *memMessageStore) UpdateDeleteFlags(message *model.Message) {
	clone := *message
	s.pending = append(s.pending, func() int64 {
		if m, ok := s.repo.messages[clone.Id]; ok {
			m.SenderDeleted = clone.SenderDeleted
			m.RecipientDeleted = clone.RecipientDeleted
			return 1
		}
		return 0
	})
}

func (s *memMessageStore) SaveAll() (bool, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	var affected int64
	for _, op := range s.pending {
		affected += op()
	}
	s.pending = nil
	return affected > 0, nil
}

// startTestGateway 启动一个带进程内代理的网关和测试 HTTP 服务
// 测试服务用 user 查询参数代替 JWT 中间件传身份
func startTestGateway(t *testing.T) (*Gateway, *memMessageRepo, *httptest.Server) {
	t.Helper()
	msgRepo := newMemMessageRepo()
	repos := &repository.Repositories{
		User:    &fakeUserRepo{},
		Message: msgRepo,
	}
	threadSvc := thread.NewService(msgRepo, nil)
	gateway := NewGateway(threadSvc, repos, nil)
	broker := NewChannelBroker(gateway)
	gateway.SetBroker(broker)
	go broker.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/wss", func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("user")
		otherUser := r.URL.Query().Get("other_user")
		_ = gateway.Connect(w, r, username, otherUser)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		gateway.Close()
	})
	return gateway, msgRepo, srv
}

// dialWs 建立一条测试 WebSocket 连接
func dialWs(t *testing.T, srv *httptest.Server, username, otherUser string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/wss?user=" + username + "&other_user=" + otherUser
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil 循环读取直到收到指定类型的事件
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) respond.ChatEventRespond {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", eventType, err)
		}
		var event respond.ChatEventRespond
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Type == eventType {
			return event
		}
	}
}

func sendMessage(t *testing.T, conn *websocket.Conn, recipient, content string) {
	t.Helper()
	payload := map[string]string{
		"type":               "send_message",
		"recipient_username": recipient,
		"content":            content,
	}
	if err := conn.WriteJSON(payload); err != nil {
		t.Fatal(err)
	}
}

func TestSendMessageBothInRoom(t *testing.T) {
	_, msgRepo, srv := startTestGateway(t)

	alice := dialWs(t, srv, "alice", "bob")
	bob := dialWs(t, srv, "bob", "alice")

	// 等双方都完成接入（message_thread 在加入房间之后推送）
	readUntil(t, alice, respond.EventMessageThread)
	readUntil(t, bob, respond.EventMessageThread)

	sendMessage(t, alice, "bob", "hello bob")

	// 接收者在房间内：双方都收到完整消息，且创建即已读
	got := readUntil(t, bob, respond.EventNewMessage)
	if got.Message == nil || got.Message.Content != "hello bob" {
		t.Fatalf("unexpected message payload: %+v", got.Message)
	}
	if got.Message.ReadAt == "" {
		t.Fatal("message should be read at creation when recipient is in the room")
	}
	echo := readUntil(t, alice, respond.EventNewMessage)
	if echo.Message == nil || echo.Message.Content != "hello bob" {
		t.Fatalf("sender should receive the echo, got %+v", echo.Message)
	}

	// 落库的消息带已读戳
	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	if len(msgRepo.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(msgRepo.messages))
	}
	for _, m := range msgRepo.messages {
		if !m.ReadAt.Valid {
			t.Fatal("stored message should carry a read timestamp")
		}
	}
}

func TestSendMessageRecipientNotInRoom(t *testing.T) {
	_, msgRepo, srv := startTestGateway(t)

	alice := dialWs(t, srv, "alice", "bob")
	readUntil(t, alice, respond.EventMessageThread)

	sendMessage(t, alice, "bob", "are you there")

	// 发送者收到回显，消息保持未读
	echo := readUntil(t, alice, respond.EventNewMessage)
	if echo.Message.ReadAt != "" {
		t.Fatal("message should stay unread when recipient is absent")
	}

	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	for _, m := range msgRepo.messages {
		if m.ReadAt.Valid {
			t.Fatal("stored message should be unread")
		}
	}
}

func TestSendMessageRecipientInAnotherRoom(t *testing.T) {
	_, msgRepo, srv := startTestGateway(t)

	alice := dialWs(t, srv, "alice", "bob")
	readUntil(t, alice, respond.EventMessageThread)
	// bob 在线，但盯着的是和 carol 的会话
	bob := dialWs(t, srv, "bob", "carol")
	readUntil(t, bob, respond.EventMessageThread)

	sendMessage(t, alice, "bob", "secret greeting")

	// bob 只收到不带内容的未读提醒，且之前不能混进完整消息
	deadline := time.Now().Add(3 * time.Second)
	_ = bob.SetReadDeadline(deadline)
	var notice respond.ChatEventRespond
	for {
		_, data, err := bob.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for notification: %v", err)
		}
		var event respond.ChatEventRespond
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Type == respond.EventNewMessage {
			t.Fatal("out-of-room recipient must not receive the full message")
		}
		if event.Type == respond.EventNewMessageReceived {
			notice = event
			break
		}
	}
	if notice.Username != "alice" {
		t.Fatalf("notification should carry the sender name, got %q", notice.Username)
	}
	if notice.Message != nil || len(notice.Messages) != 0 || notice.Msg != "" {
		t.Fatal("notification must not leak message content")
	}

	// 落库的消息保持未读
	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	if len(msgRepo.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(msgRepo.messages))
	}
	for _, m := range msgRepo.messages {
		if m.ReadAt.Valid {
			t.Fatal("message should stay unread while recipient is in another room")
		}
	}
}

func TestSendMessageToSelfRejected(t *testing.T) {
	_, msgRepo, srv := startTestGateway(t)

	alice := dialWs(t, srv, "alice", "bob")
	readUntil(t, alice, respond.EventMessageThread)

	sendMessage(t, alice, "alice", "note to self")

	event := readUntil(t, alice, respond.EventError)
	if event.Code != errorx.CodeInvalidOperation {
		t.Fatalf("expected invalid operation code, got %d", event.Code)
	}

	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	if len(msgRepo.messages) != 0 {
		t.Fatal("self message must not be stored")
	}
}

func TestConnectPushesThreadAndMarksRead(t *testing.T) {
	_, msgRepo, srv := startTestGateway(t)

	// bob 上线前 alice 先发一条
	alice := dialWs(t, srv, "alice", "bob")
	readUntil(t, alice, respond.EventMessageThread)
	sendMessage(t, alice, "bob", "first")
	readUntil(t, alice, respond.EventNewMessage)

	// bob 接入会话：历史记录推送过来，且读取即已读
	bob := dialWs(t, srv, "bob", "alice")
	threadEvent := readUntil(t, bob, respond.EventMessageThread)
	if len(threadEvent.Messages) != 1 {
		t.Fatalf("expected 1 message in pushed thread, got %d", len(threadEvent.Messages))
	}
	if threadEvent.Messages[0].ReadAt == "" {
		t.Fatal("pushed thread should carry fresh read timestamps")
	}

	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	for _, m := range msgRepo.messages {
		if !m.ReadAt.Valid {
			t.Fatal("opening the thread should mark the message read")
		}
	}
}

func TestPresenceBroadcastOnConnect(t *testing.T) {
	_, _, srv := startTestGateway(t)

	alice := dialWs(t, srv, "alice", "bob")
	users := readUntil(t, alice, respond.EventOnlineUsers)
	if len(users.Users) != 1 || users.Users[0] != "alice" {
		t.Fatalf("expected online roster [alice], got %v", users.Users)
	}

	_ = dialWs(t, srv, "bob", "alice")
	online := readUntil(t, alice, respond.EventUserOnline)
	if online.Username != "bob" {
		t.Fatalf("expected bob online broadcast, got %s", online.Username)
	}
}
