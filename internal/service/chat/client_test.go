package chat

import (
	"sync"
	"testing"
)

func TestEnqueueAfterCloseIsSafe(t *testing.T) {
	c := &UserConn{SendBack: make(chan []byte, 4)}

	if !c.enqueue([]byte("a")) {
		t.Fatal("enqueue on open connection should succeed")
	}
	c.closeSend()
	// 关闭后入队只返回失败，不会向已关闭的通道发送
	if c.enqueue([]byte("b")) {
		t.Fatal("enqueue after close should report failure")
	}
	// 重复关闭安全
	c.closeSend()
}

func TestEnqueueFullChannel(t *testing.T) {
	c := &UserConn{SendBack: make(chan []byte, 1)}
	if !c.enqueue([]byte("a")) {
		t.Fatal("first enqueue should fit the buffer")
	}
	if c.enqueue([]byte("b")) {
		t.Fatal("full channel should drop instead of blocking")
	}
}

func TestConcurrentEnqueueAndClose(t *testing.T) {
	// 入队与断开清理并发交错，不允许出现向已关闭通道发送的 panic
	for i := 0; i < 200; i++ {
		c := &UserConn{SendBack: make(chan []byte, 1)}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				c.enqueue([]byte("x"))
			}
		}()
		go func() {
			defer wg.Done()
			c.closeSend()
		}()
		wg.Wait()
	}
}
