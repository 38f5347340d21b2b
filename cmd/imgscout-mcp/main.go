package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scanRequest mirrors the imgscout API request model.
type scanRequest struct {
	URL  string `json:"url"`
	Mode string `json:"mode,omitempty"`
}

// scanResponse mirrors the imgscout API response model.
type scanResponse struct {
	Success bool `json:"success"`
	Images  []struct {
		URL           string `json:"url"`
		Width         string `json:"width"`
		Height        string `json:"height"`
		Alt           string `json:"alt"`
		Type          string `json:"type"`
		FileSize      string `json:"fileSize"`
		FileSizeBytes int64  `json:"fileSizeBytes"`
	} `json:"images"`
	Total      int `json:"total"`
	MobileOnly int `json:"mobile_only"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("IMGSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("IMGSCOUT_API_KEY")

	s := server.NewMCPServer(
		"imgscout",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scanImagesTool := mcp.NewTool("scan_images",
		mcp.WithDescription("Scan a web page for every distinct image it references (desktop and mobile layouts) and report each image's URL, dimensions, alt text and byte size. Uses a headless browser to render JavaScript-heavy pages."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scan"),
		),
		mcp.WithString("mode",
			mcp.Description("Fetch mode: 'browser' (default, full dual-viewport render), 'static' (plain HTTP, no JS), or 'auto' (static first, browser when needed)"),
			mcp.Enum("browser", "static", "auto"),
		),
	)

	s.AddTool(scanImagesTool, handleScanImages(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScanImages(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 150 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := scanRequest{
			URL:  url,
			Mode: request.GetString("mode", ""),
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/scan", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var scanResp scanResponse
		if err := json.Unmarshal(respBody, &scanResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !scanResp.Success {
			errMsg := "scan failed"
			if scanResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", scanResp.Error.Code, scanResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Found %d images on %s (%d mobile-only):\n\n",
			scanResp.Total, url, scanResp.MobileOnly))
		for i, img := range scanResp.Images {
			sb.WriteString(fmt.Sprintf("%d. %s\n   type=%s size=%s dimensions=%s x %s alt=%q\n",
				i+1, img.URL, img.Type, img.FileSize, img.Width, img.Height, img.Alt))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
