package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageKindSchema is the shared schema fragment for the image_kind argument.
func imageKindSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"xray", "ct", "mri", "ultrasound", "tumor", "histology", "other"},
		"description": "Imaging modality of the input. Unknown values fall back to the generic analysis branch.",
		"default":     "other",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Lesion Analysis
		{
			Name:        "lesion_analyze",
			Description: "Run the full multi-method lesion analysis on a medical image: detector bank, fusion, per-region classification and an annotated copy saved next to the source. Returns the structured analysis result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"image_kind": imageKindSchema(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lesion_preprocess",
			Description: "Run only the preprocessing stage (contrast enhancement and modality-specific denoising) and return the enhanced grayscale plane as a base64 PNG. Useful for inspecting what the detectors actually see.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"image_kind": imageKindSchema(),
				},
				"required": []string{"path"},
			},
		},

		// Medicine Package Identification
		{
			Name:        "medpack_identify",
			Description: "Analyze a photograph of medicine packaging: OCR the label (when Tesseract is available), parse name/dosage/form/expiry/batch, and compute visual features. Degrades to visual-only analysis without OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the package photograph",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
