package connector

import (
	"context"
	"fmt"

	"smartrecover.dev/engine/internal/config"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/store"
)

// NewIncidentConnector selects an IncidentConnector variant from cfg.Type.
// Unknown types are rejected with a config-error.
func NewIncidentConnector(ctx context.Context, cfg config.IncidentConnectorConfig, incidents *store.IncidentStore) (IncidentConnector, error) {
	switch cfg.Type {
	case "", "mock":
		return NewMockIncidentConnector(ctx, incidents, cfg.ServiceNowCSVPath, cfg.ChangesCSVPath)
	case "servicenow":
		if cfg.ServiceNowBaseURL == "" {
			return nil, domain.ConfigError("servicenow_base_url is required for incident_connector.type=servicenow", nil)
		}
		return NewServiceNowConnector(cfg.ServiceNowBaseURL, cfg.ServiceNowUser, cfg.ServiceNowPassword), nil
	case "jira":
		if cfg.JiraBaseURL == "" {
			return nil, domain.ConfigError("jira_base_url is required for incident_connector.type=jira", nil)
		}
		return NewJiraConnector(cfg.JiraBaseURL, cfg.JiraUser, cfg.JiraToken), nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown incident_connector.type %q", cfg.Type), nil)
	}
}

// NewKnowledgeBaseConnector selects a KnowledgeBaseConnector variant from
// cfg.Source. Unknown sources are rejected with a config-error.
func NewKnowledgeBaseConnector(ctx context.Context, cfg config.KnowledgeBaseConfig) (KnowledgeBaseConnector, error) {
	switch cfg.Source {
	case "", "mock":
		return NewMockKnowledgeBaseConnector(ctx, cfg.CSVPath, cfg.DocsFolder)
	case "confluence":
		if cfg.ConfluenceBaseURL == "" {
			return nil, domain.ConfigError("confluence_base_url is required for knowledge_base.source=confluence", nil)
		}
		return NewConfluenceConnector(cfg.ConfluenceBaseURL, cfg.ConfluenceUser, cfg.ConfluenceToken), nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown knowledge_base.source %q", cfg.Source), nil)
	}
}
