package errorx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDBError, "查询消息")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should match the cause with errors.Is")
	}
	if err.Error() != "查询消息: connection refused" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(New(CodeNotFound, "消息不存在")) != CodeNotFound {
		t.Fatal("should extract code from CodeError")
	}
	// 再包一层普通错误也能取到码
	wrapped := fmt.Errorf("outer: %w", New(CodeInvalidOperation, "非法操作"))
	if GetCode(wrapped) != CodeInvalidOperation {
		t.Fatal("should extract code through error chain")
	}
	// 非 CodeError 返回默认的服务繁忙
	if GetCode(errors.New("plain")) != CodeServerBusy {
		t.Fatal("plain error should map to server busy")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(New(CodeNotFound, "消息不存在")) {
		t.Fatal("CodeNotFound error should be detected")
	}
	if IsNotFound(New(CodeDBError, "数据库错误")) {
		t.Fatal("other codes should not be detected as not found")
	}
	if IsNotFound(nil) {
		t.Fatal("nil is not a not-found error")
	}
}
