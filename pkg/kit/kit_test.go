package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
)

func tag(name string, trace *[]string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			*trace = append(*trace, name)
			return next(ctx, req)
		}
	}
}

func TestChainOrder(t *testing.T) {
	var trace []string
	ep := Chain(tag("a", &trace), tag("b", &trace), tag("c", &trace))(func(context.Context, any) (any, error) {
		trace = append(trace, "endpoint")
		return nil, nil
	})
	ep(context.Background(), nil)

	if diff := cmp.Diff([]string{"a", "b", "c", "endpoint"}, trace); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestID(t *testing.T) {
	var got string
	ep := RequestID()(func(ctx context.Context, _ any) (any, error) {
		got = GetRequestID(ctx)
		return nil, nil
	})

	ep(context.Background(), nil)
	if len(got) != 36 {
		t.Errorf("generated request id = %q, want a uuid", got)
	}

	ep(WithRequestID(context.Background(), "fixed"), nil)
	if got != "fixed" {
		t.Errorf("request id = %q, want existing id kept", got)
	}
}

func TestGetTransportDefault(t *testing.T) {
	if got := GetTransport(context.Background()); got != "http" {
		t.Errorf("GetTransport = %q, want http", got)
	}
	if got := GetTransport(WithTransport(context.Background(), "mcp")); got != "mcp" {
		t.Errorf("GetTransport = %q, want mcp", got)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Logging(logger, "search")(func(context.Context, any) (any, error) { return "ok", nil })
	ctx := WithRequestID(context.Background(), "req-1")
	if resp, err := ok(ctx, nil); resp != "ok" || err != nil {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
	out := buf.String()
	for _, want := range []string{"level=DEBUG", "endpoint=search", "transport=http", "request_id=req-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}

	buf.Reset()
	boom := errors.New("boom")
	failing := Logging(logger, "import")(func(context.Context, any) (any, error) { return nil, boom })
	if _, err := failing(ctx, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=boom") {
		t.Errorf("log %q, want warn with error", out)
	}
}

func resultText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}

func TestMCPToolHandler(t *testing.T) {
	var transport string
	handler := MCPToolHandler(func(ctx context.Context, req any) (any, error) {
		transport = GetTransport(ctx)
		if req.(string) == "fail" {
			return nil, errors.New("no such entry")
		}
		return map[string]string{"echo": req.(string)}, nil
	}, func(req mcp.CallToolRequest) (*MCPDecodeResult, error) {
		v, _ := req.GetArguments()["value"].(string)
		if v == "" {
			return nil, errors.New("value is required")
		}
		return &MCPDecodeResult{Request: v}, nil
	})

	call := func(args map[string]any) *mcp.CallToolResult {
		req := mcp.CallToolRequest{}
		req.Params.Name = "echo"
		req.Params.Arguments = args
		res, err := handler(context.Background(), req)
		if err != nil {
			t.Fatalf("handler: %v", err)
		}
		return res
	}

	res := call(map[string]any{"value": "hi"})
	if res.IsError || resultText(res) != `{"echo":"hi"}` {
		t.Errorf("result = %+v", res)
	}
	if transport != "mcp" {
		t.Errorf("transport = %q, want mcp", transport)
	}

	res = call(map[string]any{})
	if !res.IsError || !strings.Contains(resultText(res), "invalid arguments") {
		t.Errorf("decode failure result = %+v", res)
	}

	res = call(map[string]any{"value": "fail"})
	if !res.IsError || resultText(res) != "no such entry" {
		t.Errorf("endpoint failure result = %+v", res)
	}
}
