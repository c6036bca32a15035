package server

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, width, height int, value uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}

	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func makeRequest(t *testing.T, method string, params interface{}) *MCPRequest {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("failed to marshal params: %v", err)
		}
		raw = b
	}
	return &MCPRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: raw}
}

func TestHandleInitialize(t *testing.T) {
	s := New()
	resp := s.handleRequest(makeRequest(t, "initialize", nil))
	if resp == nil || resp.Error != nil {
		t.Fatalf("initialize failed: %+v", resp)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok || info["name"] != "lesion-scan-mcp" {
		t.Errorf("serverInfo = %v", result["serverInfo"])
	}
}

func TestHandleInitializedNotification(t *testing.T) {
	s := New()
	if resp := s.handleRequest(makeRequest(t, "notifications/initialized", nil)); resp != nil {
		t.Errorf("notification produced a response: %+v", resp)
	}
}

func TestHandlePing(t *testing.T) {
	s := New()
	resp := s.handleRequest(makeRequest(t, "ping", nil))
	if resp == nil || resp.Error != nil {
		t.Errorf("ping failed: %+v", resp)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	s := New()
	resp := s.handleRequest(makeRequest(t, "bogus/method", nil))
	if resp == nil || resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("unknown method response = %+v", resp)
	}
}

func TestToolsList(t *testing.T) {
	s := New()
	resp := s.handleRequest(makeRequest(t, "tools/list", nil))
	if resp == nil || resp.Error != nil {
		t.Fatalf("tools/list failed: %+v", resp)
	}

	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("unexpected tools type %T", result["tools"])
	}

	want := map[string]bool{
		"image_load":        false,
		"image_dimensions":  false,
		"lesion_analyze":    false,
		"lesion_preprocess": false,
		"medpack_identify":  false,
	}
	for _, tool := range tools {
		if tool.Description == "" || tool.InputSchema == nil {
			t.Errorf("tool %s missing description or schema", tool.Name)
		}
		if _, known := want[tool.Name]; known {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %s not listed", name)
		}
	}
}

func TestToolCallUnknownTool(t *testing.T) {
	s := New()
	resp := s.handleRequest(makeRequest(t, "tools/call", ToolCallParams{
		Name:      "nonexistent_tool",
		Arguments: json.RawMessage(`{}`),
	}))
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("unknown tool response = %+v", resp)
	}
}

func TestToolCallImageDimensions(t *testing.T) {
	path := writeTestPNG(t, 40, 30, 128)

	s := New()
	resp := s.handleRequest(makeRequest(t, "tools/call", ToolCallParams{
		Name:      "image_dimensions",
		Arguments: json.RawMessage(fmt.Sprintf(`{"path": %q}`, path)),
	}))
	if resp.Error != nil {
		t.Fatalf("image_dimensions failed: %+v", resp.Error)
	}

	text := contentText(t, resp)
	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal([]byte(text), &dims); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	if dims.Width != 40 || dims.Height != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", dims.Width, dims.Height)
	}
}

func TestToolCallLesionAnalyze(t *testing.T) {
	path := writeTestPNG(t, 96, 96, 170)

	s := New()
	resp := s.handleRequest(makeRequest(t, "tools/call", ToolCallParams{
		Name:      "lesion_analyze",
		Arguments: json.RawMessage(fmt.Sprintf(`{"path": %q, "image_kind": "xray"}`, path)),
	}))
	if resp.Error != nil {
		t.Fatalf("lesion_analyze failed: %+v", resp.Error)
	}

	text := contentText(t, resp)
	var result struct {
		TumorDetected bool                     `json:"tumor_detected"`
		TumorRegions  []map[string]interface{} `json:"tumor_regions"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	if result.TumorDetected || len(result.TumorRegions) != 0 {
		t.Errorf("flat image produced detections: %+v", result)
	}
}

func TestToolCallLesionAnalyzeBadPath(t *testing.T) {
	s := New()
	resp := s.handleRequest(makeRequest(t, "tools/call", ToolCallParams{
		Name:      "lesion_analyze",
		Arguments: json.RawMessage(`{"path": "/nonexistent/scan.png"}`),
	}))
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("unreadable image response = %+v", resp)
	}
}

func TestToolCallLesionPreprocess(t *testing.T) {
	path := writeTestPNG(t, 64, 64, 150)

	s := New()
	resp := s.handleRequest(makeRequest(t, "tools/call", ToolCallParams{
		Name:      "lesion_preprocess",
		Arguments: json.RawMessage(fmt.Sprintf(`{"path": %q, "image_kind": "ct"}`, path)),
	}))
	if resp.Error != nil {
		t.Fatalf("lesion_preprocess failed: %+v", resp.Error)
	}

	text := contentText(t, resp)
	var result lesionPreprocessResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	if result.Width != 64 || result.Height != 64 {
		t.Errorf("preprocessed dimensions = %dx%d, want 64x64", result.Width, result.Height)
	}
	if result.EnhancedPNG == "" {
		t.Error("no enhanced plane returned")
	}
	if result.ImageKind != "ct" {
		t.Errorf("image kind = %q, want ct", result.ImageKind)
	}
}

func TestToolCallInvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`{invalid`)}
	resp := s.handleRequest(req)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("invalid params response = %+v", resp)
	}
}

// contentText unwraps the MCP content envelope around a tool result.
func contentText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) == 0 {
		t.Fatalf("unexpected content shape %T", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text missing")
	}
	return text
}
