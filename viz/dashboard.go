// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides a plain-text CRM overview for non-interactive output
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/crmdash/models"
)

type DashboardStats struct {
	Metrics Metrics

	// Pipeline overview
	Stages []StageSummary

	// Most recent activity, newest first
	RecentActivity []ActivityItem

	// Never contacted
	StaleContacts []string
}

type ActivityItem struct {
	Activity models.Activity
	Contact  string
}

// RecentCount is how many activities the dashboard lists.
const RecentCount = 5

func GenerateDashboardStats(contacts []models.Contact, deals []models.Deal, activities []models.Activity) *DashboardStats {
	stats := &DashboardStats{
		Metrics: ComputeMetrics(contacts, deals),
		Stages:  StageSummaries(deals, models.DealStages),
	}

	names := ContactNames(contacts)
	for _, a := range RecentActivities(activities, RecentCount) {
		stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
			Activity: a,
			Contact:  ContactName(names, a.ContactID),
		})
	}

	for _, c := range contacts {
		if c.LastContact == nil {
			stats.StaleContacts = append(stats.StaleContacts, c.Name)
		}
	}

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  CRMDASH DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	// Metrics
	m := stats.Metrics
	out.WriteString("METRICS\n")
	out.WriteString(fmt.Sprintf("  Total Contacts   %d\n", m.TotalContacts))
	out.WriteString(fmt.Sprintf("  Active Deals     %d\n", m.ActiveDeals))
	out.WriteString(fmt.Sprintf("  Pipeline Value   %s\n", FormatMoney(m.PipelineValue)))
	out.WriteString(fmt.Sprintf("  Conversion Rate  %d%%\n\n", m.ConversionRate))

	// Pipeline overview
	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Stages)
	out.WriteString("\n")

	// Recent activity
	out.WriteString("RECENT ACTIVITIES\n")
	if len(stats.RecentActivity) == 0 {
		out.WriteString("  No recent activities\n")
	}
	for _, item := range stats.RecentActivity {
		a := item.Activity
		out.WriteString(fmt.Sprintf("  %-7s %s · %s · %s · %dmin\n",
			a.Type, a.Description, item.Contact, a.Date.Format("Jan 2, 2006"), a.Duration))
	}

	// Needs attention
	if len(stats.StaleContacts) > 0 {
		out.WriteString("\nNEEDS ATTENTION\n")
		out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - never contacted\n", len(stats.StaleContacts)))
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, stages []StageSummary) {
	// Find max count for scaling
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		// Calculate bar length (0-10 blocks)
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n",
			s.Label(), bar, s.Count, FormatMoney(s.Value)))
	}
}
