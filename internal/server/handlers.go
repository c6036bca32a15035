package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"

	"github.com/medview/lesionscan/internal/imaging"
	"github.com/medview/lesionscan/internal/medpack"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lesion_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "lesion_analyze":
		return s.handleLesionAnalyze(args)
	case "lesion_preprocess":
		return s.handleLesionPreprocess(args)
	case "medpack_identify":
		return s.handleMedpackIdentify(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.analyzer.Cache(), a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.analyzer.Cache(), a.Path)
}

// === Lesion Analysis Handlers ===

type lesionArgs struct {
	Path      string `json:"path"`
	ImageKind string `json:"image_kind"`
}

func (s *Server) handleLesionAnalyze(args json.RawMessage) (interface{}, error) {
	var a lesionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImageKind == "" {
		a.ImageKind = "other"
	}
	return s.analyzer.Analyze(a.Path, a.ImageKind)
}

// lesionPreprocessResult carries the enhanced plane back to the client.
type lesionPreprocessResult struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageKind string `json:"image_kind"`

	// EnhancedPNG is the preprocessed grayscale plane, base64-encoded.
	EnhancedPNG string `json:"enhanced_png"`
}

func (s *Server) handleLesionPreprocess(args json.RawMessage) (interface{}, error) {
	var a lesionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImageKind == "" {
		a.ImageKind = "other"
	}

	img, err := s.analyzer.Cache().Load(a.Path)
	if err != nil {
		return nil, err
	}

	kind := imaging.ParseKind(a.ImageKind)
	pre := imaging.Preprocess(imaging.ToGray(img), kind)

	var buf bytes.Buffer
	if err := png.Encode(&buf, pre.Enhanced); err != nil {
		return nil, fmt.Errorf("failed to encode enhanced plane: %w", err)
	}

	b := pre.Enhanced.Bounds()
	return &lesionPreprocessResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageKind:   string(kind),
		EnhancedPNG: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// === Medicine Package Handlers ===

func (s *Server) handleMedpackIdentify(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, err := s.analyzer.Cache().Load(a.Path)
	if err != nil {
		return nil, err
	}
	return medpack.Analyze(a.Path, img), nil
}
