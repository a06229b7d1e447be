package middleware

import (
	"testing"
)

func TestCreate_RegisteredMiddleware(t *testing.T) {
	// init() 应已注册所有内置中间件
	for _, name := range []string{
		MiddlewareRecovery,
		MiddlewareLogger,
		MiddlewareTimeout,
		MiddlewareCORS,
	} {
		if !IsRegistered(name) {
			t.Fatalf("middleware %q 未注册", name)
		}
		cfg, err := Create(name)
		if err != nil {
			t.Fatalf("Create(%q) error: %v", name, err)
		}
		if cfg == nil {
			t.Fatalf("Create(%q) 返回 nil 配置", name)
		}
	}
}

func TestCreate_Unregistered(t *testing.T) {
	if _, err := Create("no-such-middleware"); err == nil {
		t.Fatal("未注册的中间件应返回错误")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("重复注册应触发 panic")
		}
	}()
	Register(MiddlewareRecovery, func() MiddlewareConfig { return nil })
}

func TestListRegistered_Sorted(t *testing.T) {
	names := ListRegistered()
	if len(names) == 0 {
		t.Fatal("ListRegistered 不应为空")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("名称未按字母排序: %q >= %q", names[i-1], names[i])
		}
	}
}
