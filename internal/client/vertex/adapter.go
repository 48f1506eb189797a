package vertexclient

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
)

const serviceName = "vertex"

type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

// GenerateText sends a single prompt with an optional system instruction and
// returns the concatenated text of the first candidate.
func (a *Adapter) GenerateText(ctx context.Context, req dto.TextRequest) (dto.TextResponse, error) {
	out := dto.TextResponse{}

	modelName := req.Model
	if modelName == "" {
		modelName = a.model
	}
	if modelName == "" {
		return out, errs.NewValidationError("vertex model is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return out, errs.NewValidationError("prompt is required")
	}

	model := a.client.GenerativeModel(modelName)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.MaxOutputTokens != nil {
		model.SetMaxOutputTokens(*req.MaxOutputTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return out, wrapError(err)
	}

	out.Raw = resp
	out.Text, out.FinishReason = parseTextResponse(resp)
	if out.Text == "" {
		return out, errs.NewExternalServiceError(serviceName, "empty response from model", false, nil)
	}
	return out, nil
}

func parseTextResponse(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", candidate.FinishReason.String()
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String()), candidate.FinishReason.String()
}

func wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.NewExternalServiceError(serviceName, "text generation timed out", true, err)
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
		return errs.NewExternalServiceError(serviceName, "text generation unavailable", true, err)
	case codes.InvalidArgument:
		return errs.NewValidationError("text generation rejected the request")
	}
	return errs.NewExternalServiceError(serviceName, "text generation failed", false, err)
}
