package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/insights-dashboard/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	WidgetSvc       WidgetService
	SessionSvc      SessionService
	AnalysisSvc     AnalysisService
	InsightSvc      InsightService
}
