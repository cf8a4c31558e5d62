package analytics

import (
	"time"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type KPIs struct {
	TotalIssues    int `json:"totalIssues"`
	CriticalIssues int `json:"criticalIssues"`
	ResolvedIssues int `json:"resolvedIssues"`
	ActiveChipsets int `json:"activeChipsets"`
	Velocity       int `json:"velocity"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

// Count is one (label, count) pair of a distribution.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type AssigneeLoad struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Count int    `json:"count"`
}

type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthWarning  Health = "warning"
	HealthCritical Health = "critical"
)

type ChipsetReliability struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Failures  int    `json:"failures"`
	ErrorRate int    `json:"errorRate"`
	Health    Health `json:"health"`
}

// DashboardView is every derived view of one issue snapshot.
type DashboardView struct {
	KPIs                 KPIs                 `json:"kpis"`
	Trend                []TrendPoint         `json:"trend"`
	PriorityDistribution []Count              `json:"priorityDistribution"`
	StatusDistribution   []Count              `json:"statusDistribution"`
	TopReporters         []Count              `json:"topReporters"`
	StaleIssues          []domain.Issue       `json:"staleIssues"`
	CriticalEscalations  []domain.Issue       `json:"criticalEscalations"`
	TopAssignees         []AssigneeLoad       `json:"topAssignees"`
	ChipsetReliability   []ChipsetReliability `json:"chipsetReliability"`
	RecentActivity       []domain.Issue       `json:"recentActivity"`
	ChipsetDistribution  []Count              `json:"chipsetDistribution"`
	GeneratedAt          time.Time            `json:"generatedAt"`
}
