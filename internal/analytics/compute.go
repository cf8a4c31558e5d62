// Package analytics derives dashboard views from a full issue snapshot.
// Nothing here keeps state between calls.
package analytics

import (
	"math"
	"sort"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Compute builds a DashboardView from issues. The slice is not modified.
func Compute(issues []domain.Issue, opts Options) DashboardView {
	opts = opts.withDefaults()

	return DashboardView{
		KPIs:                 computeKPIs(issues, opts),
		Trend:                Trend(issues, opts),
		PriorityDistribution: priorityDistribution(issues),
		StatusDistribution:   statusDistribution(issues),
		TopReporters:         topReporters(issues, opts.TopN),
		StaleIssues:          staleIssues(issues, opts),
		CriticalEscalations:  criticalEscalations(issues, opts.TopN),
		TopAssignees:         topAssignees(issues, opts),
		ChipsetReliability:   Reliability(issues, opts.ChipsetLimit),
		RecentActivity:       recentActivity(issues, opts.TopN),
		ChipsetDistribution:  chipsetDistribution(issues, opts.DistributionLimit),
		GeneratedAt:          opts.Now,
	}
}

func computeKPIs(issues []domain.Issue, opts Options) KPIs {
	var k KPIs
	chipsets := make(map[string]struct{})
	since := opts.Now.Add(-opts.VelocityWindow)

	for _, is := range issues {
		k.TotalIssues++
		if is.Priority == domain.PriorityCritical {
			k.CriticalIssues++
		}
		if is.Status.IsResolved() {
			k.ResolvedIssues++
			if !is.UpdatedAt.Before(since) {
				k.Velocity++
			}
		}
		chipsets[is.Chipset] = struct{}{}
	}
	k.ActiveChipsets = len(chipsets)
	return k
}

func priorityDistribution(issues []domain.Issue) []Count {
	t := newTally()
	for _, is := range issues {
		t.add(string(is.Priority))
	}
	return t.counts()
}

func statusDistribution(issues []domain.Issue) []Count {
	t := newTally()
	for _, is := range issues {
		t.add(string(is.Status))
	}
	return t.counts()
}

func topReporters(issues []domain.Issue, n int) []Count {
	t := newTally()
	for _, is := range issues {
		t.add(orUnknown(is.ReporterName()))
	}
	return t.top(n)
}

func staleIssues(issues []domain.Issue, opts Options) []domain.Issue {
	cutoff := opts.Now.Add(-opts.StaleAfter)
	out := make([]domain.Issue, 0, opts.TopN)
	for _, is := range issues {
		if len(out) == opts.TopN {
			break
		}
		if !is.Status.IsResolved() && is.UpdatedAt.Before(cutoff) {
			out = append(out, is)
		}
	}
	return out
}

func criticalEscalations(issues []domain.Issue, n int) []domain.Issue {
	out := make([]domain.Issue, 0, n)
	for _, is := range issues {
		if len(out) == n {
			break
		}
		if is.Priority != domain.PriorityCritical {
			continue
		}
		if is.Status == domain.StatusOpen || is.Status == domain.StatusInProgress {
			out = append(out, is)
		}
	}
	return out
}

func topAssignees(issues []domain.Issue, opts Options) []AssigneeLoad {
	t := newTally()
	for _, is := range issues {
		if is.AssigneeID == nil {
			continue
		}
		t.add(orUnknown(is.AssigneeName()))
	}
	top := t.top(opts.TopN)
	out := make([]AssigneeLoad, 0, len(top))
	for _, c := range top {
		out = append(out, AssigneeLoad{Name: c.Name, Role: opts.AssigneeRole, Count: c.Count})
	}
	return out
}

// Reliability groups issues by chipset in first-seen order and keeps the
// first limit groups. errorRate is the rounded share of HIGH or CRITICAL issues.
func Reliability(issues []domain.Issue, limit int) []ChipsetReliability {
	index := make(map[string]int)
	groups := make([]ChipsetReliability, 0, limit)
	for _, is := range issues {
		name := orUnknown(is.Chipset)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ChipsetReliability{Name: name})
		}
		groups[i].Total++
		if is.Priority.IsSevere() {
			groups[i].Failures++
		}
	}

	if len(groups) > limit {
		groups = groups[:limit]
	}
	for i := range groups {
		g := &groups[i]
		g.ErrorRate = int(math.Round(100 * float64(g.Failures) / float64(g.Total)))
		g.Health = HealthBand(g.ErrorRate)
	}
	return groups
}

// HealthBand classifies an error rate percentage.
func HealthBand(errorRate int) Health {
	switch {
	case errorRate < 10:
		return HealthHealthy
	case errorRate < 30:
		return HealthWarning
	default:
		return HealthCritical
	}
}

func recentActivity(issues []domain.Issue, n int) []domain.Issue {
	sorted := make([]domain.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func chipsetDistribution(issues []domain.Issue, n int) []Count {
	t := newTally()
	for _, is := range issues {
		t.add(orUnknown(is.Chipset))
	}
	return t.top(n)
}
