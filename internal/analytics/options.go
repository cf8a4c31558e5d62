package analytics

import "time"

const (
	DefaultVelocityWindow    = 7 * 24 * time.Hour
	DefaultStaleAfter        = 14 * 24 * time.Hour
	DefaultTrendBuckets      = 10
	DefaultTopN              = 5
	DefaultChipsetLimit      = 8
	DefaultDistributionLimit = 4
	DefaultAssigneeRole      = "Developer"

	// TrendLabelLayout renders a calendar day as "Jan 2".
	TrendLabelLayout = "Jan 2"
	UnknownLabel     = "Unknown"
)

// Options tunes Compute. Zero fields fall back to the defaults above.
type Options struct {
	Now               time.Time
	Location          *time.Location
	VelocityWindow    time.Duration
	StaleAfter        time.Duration
	TrendBuckets      int
	TopN              int
	ChipsetLimit      int
	DistributionLimit int
	AssigneeRole      string
}

func DefaultOptions(now time.Time) Options {
	return Options{Now: now}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.VelocityWindow <= 0 {
		o.VelocityWindow = DefaultVelocityWindow
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	if o.TrendBuckets <= 0 {
		o.TrendBuckets = DefaultTrendBuckets
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.ChipsetLimit <= 0 {
		o.ChipsetLimit = DefaultChipsetLimit
	}
	if o.DistributionLimit <= 0 {
		o.DistributionLimit = DefaultDistributionLimit
	}
	if o.AssigneeRole == "" {
		o.AssigneeRole = DefaultAssigneeRole
	}
	return o
}
