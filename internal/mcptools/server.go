// Package mcptools exposes the flyer dashboard as MCP tools so local agents
// can drive the same workflow the CLI does.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flyerdeck/flyerctl/internal/confidence"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

// FlyerAPI abstracts the dashboard client for the MCP layer.
type FlyerAPI interface {
	ListFlyers(ctx context.Context) ([]flyerapi.Flyer, error)
	GetFlyer(ctx context.Context, id string) (flyerapi.Flyer, error)
	UpdateExtraction(ctx context.Context, id string, fields map[string]string) (flyerapi.Flyer, error)
	GenerateImages(ctx context.Context, id string) error
	SelectInstagramImages(ctx context.Context, flyerID string, imageIDs []string) error
	ScheduleInstagramPost(ctx context.Context, flyerID string, req flyerapi.SchedulePostRequest) (flyerapi.ScheduledPost, error)
}

// Deps holds dependencies for the MCP server.
type Deps struct {
	API FlyerAPI
}

// NewServer creates an MCP server with all flyerctl tools registered.
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"flyerctl",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("flyerctl — review flyer extractions, trigger image generation, and schedule Instagram posts on the flyer dashboard."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_flyers",
			mcp.WithDescription("List all flyers with their extraction status."),
		),
		mcpListFlyers(deps),
	)

	s.AddTool(
		mcp.NewTool("get_flyer",
			mcp.WithDescription("Fetch one flyer: extracted event fields, per-field confidence bands, and generated images."),
			mcp.WithString("flyer_id", mcp.Description("Flyer ID"), mcp.Required()),
		),
		mcpGetFlyer(deps),
	)

	s.AddTool(
		mcp.NewTool("update_extraction",
			mcp.WithDescription("Correct extracted event fields on a flyer. Only the fields passed are changed."),
			mcp.WithString("flyer_id", mcp.Description("Flyer ID"), mcp.Required()),
			mcp.WithString("fields", mcp.Description("JSON object mapping field keys to corrected values"), mcp.Required()),
		),
		mcpUpdateExtraction(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_images",
			mcp.WithDescription("Request promotional image generation for a flyer. Generation runs server-side; poll get_flyer for results."),
			mcp.WithString("flyer_id", mcp.Description("Flyer ID"), mcp.Required()),
		),
		mcpGenerateImages(deps),
	)

	s.AddTool(
		mcp.NewTool("schedule_instagram_post",
			mcp.WithDescription("Select a generated image and schedule it as an Instagram post."),
			mcp.WithString("flyer_id", mcp.Description("Flyer ID"), mcp.Required()),
			mcp.WithString("image_id", mcp.Description("Generated image ID"), mcp.Required()),
			mcp.WithString("caption", mcp.Description("Post caption"), mcp.Required()),
			mcp.WithString("scheduled_at", mcp.Description("Post time, RFC 3339 (e.g. 2026-09-01T18:00:00Z)"), mcp.Required()),
		),
		mcpScheduleInstagramPost(deps),
	)

	return s
}

type flyerSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ExtractionStatus string `json:"extraction_status"`
	GeneratedImages  int    `json:"generated_images"`
	CreatedAt        string `json:"created_at"`
}

func mcpListFlyers(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flyers, err := deps.API.ListFlyers(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("listing flyers failed: %v", err)), nil
		}

		if len(flyers) == 0 {
			return mcpText("[]"), nil
		}

		summaries := make([]flyerSummary, len(flyers))
		for i, f := range flyers {
			summaries[i] = flyerSummary{
				ID:               f.ID,
				Title:            f.Title,
				ExtractionStatus: string(f.ExtractionStatus),
				GeneratedImages:  len(f.GeneratedImages),
				CreatedAt:        f.CreatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal flyers: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

type fieldReport struct {
	Value      string `json:"value"`
	Confidence string `json:"confidence,omitempty"`
	Band       string `json:"band"`
}

type flyerDetail struct {
	ID               string                 `json:"id"`
	Title            string                 `json:"title"`
	ExtractionStatus string                 `json:"extraction_status"`
	Fields           map[string]fieldReport `json:"fields,omitempty"`
	AutoGenerate     bool                   `json:"auto_generate_ready"`
	Images           []imageReport          `json:"images,omitempty"`
}

type imageReport struct {
	ID     string `json:"id"`
	Type   string `json:"image_type"`
	Status string `json:"generation_status"`
	URL    string `json:"url,omitempty"`
}

func mcpGetFlyer(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("flyer_id")
		if err != nil {
			return mcpError("flyer_id is required"), nil
		}

		flyer, err := deps.API.GetFlyer(ctx, id)
		if err != nil {
			return mcpError(fmt.Sprintf("fetching flyer failed: %v", err)), nil
		}

		detail := flyerDetail{
			ID:               flyer.ID,
			Title:            flyer.Title,
			ExtractionStatus: string(flyer.ExtractionStatus),
		}

		if ext := flyer.InformationExtraction; ext != nil {
			values := ext.FieldValues()
			detail.Fields = make(map[string]fieldReport, len(values))
			for _, key := range flyerapi.FieldKeys() {
				raw := ext.FieldConfidenceLevels[key]
				detail.Fields[key] = fieldReport{
					Value:      values[key],
					Confidence: raw,
					Band:       confidence.Classify(values[key], raw).String(),
				}
			}
			detail.AutoGenerate = confidence.ShouldAutoGenerate(ext.FieldConfidenceLevels, values)
		}

		for _, img := range flyer.GeneratedImages {
			detail.Images = append(detail.Images, imageReport{
				ID:     img.ID,
				Type:   string(img.ImageType),
				Status: string(img.GenerationStatus),
				URL:    img.URL,
			})
		}

		b, err := json.Marshal(detail)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal flyer: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpUpdateExtraction(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("flyer_id")
		if err != nil {
			return mcpError("flyer_id is required"), nil
		}
		fieldsJSON, err := req.RequireString("fields")
		if err != nil {
			return mcpError("fields is required"), nil
		}

		var fields map[string]string
		if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
			return mcpError(fmt.Sprintf("invalid fields JSON: %v", err)), nil
		}

		flyer, err := deps.API.UpdateExtraction(ctx, id, fields)
		if err != nil {
			return mcpError(fmt.Sprintf("updating extraction failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Updated %d field(s) on flyer %s", len(fields), flyer.ID)), nil
	}
}

func mcpGenerateImages(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("flyer_id")
		if err != nil {
			return mcpError("flyer_id is required"), nil
		}

		if err := deps.API.GenerateImages(ctx, id); err != nil {
			return mcpError(fmt.Sprintf("generation request failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Image generation requested for flyer %s; poll get_flyer for results", id)), nil
	}
}

func mcpScheduleInstagramPost(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flyerID, err := req.RequireString("flyer_id")
		if err != nil {
			return mcpError("flyer_id is required"), nil
		}
		imageID, err := req.RequireString("image_id")
		if err != nil {
			return mcpError("image_id is required"), nil
		}
		caption, err := req.RequireString("caption")
		if err != nil {
			return mcpError("caption is required"), nil
		}
		scheduledAtRaw, err := req.RequireString("scheduled_at")
		if err != nil {
			return mcpError("scheduled_at is required"), nil
		}

		scheduledAt, err := time.Parse(time.RFC3339, scheduledAtRaw)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid scheduled_at: %v", err)), nil
		}

		if err := deps.API.SelectInstagramImages(ctx, flyerID, []string{imageID}); err != nil {
			return mcpError(fmt.Sprintf("selecting image failed: %v", err)), nil
		}

		post, err := deps.API.ScheduleInstagramPost(ctx, flyerID, flyerapi.SchedulePostRequest{
			ImageID:     imageID,
			Caption:     caption,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("scheduling post failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Scheduled image %s for %s (status %s)",
			post.ImageID, post.ScheduledAt.Format(time.RFC3339), post.PostStatus)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
