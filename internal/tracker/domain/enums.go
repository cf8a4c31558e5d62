package domain

import "strings"

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
	StatusReopened   Status = "REOPENED"
)

// Statuses lists every issue status in declaration order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusReopened}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusReopened:
		return true
	}
	return false
}

// IsResolved reports whether the status counts as done for reporting.
func (s Status) IsResolved() bool {
	return s == StatusResolved || s == StatusClosed
}

func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", Validation("invalid status: " + v)
	}
	return s, nil
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IsSevere reports whether the priority counts as a failure in chipset reliability.
func (p Priority) IsSevere() bool {
	return p == PriorityHigh || p == PriorityCritical
}

func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", Validation("invalid priority: " + v)
	}
	return p, nil
}

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
	RoleUser      Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDeveloper || r == RoleUser
}

type ChipsetVendor string

const (
	VendorQualcomm ChipsetVendor = "QUALCOMM"
	VendorMediatek ChipsetVendor = "MEDIATEK"
	VendorExynos   ChipsetVendor = "EXYNOS"
)

func (v ChipsetVendor) Valid() bool {
	return v == VendorQualcomm || v == VendorMediatek || v == VendorExynos
}

func ParseChipsetVendor(v string) (ChipsetVendor, error) {
	cv := ChipsetVendor(strings.ToUpper(strings.TrimSpace(v)))
	if !cv.Valid() {
		return "", Validation("invalid chipset vendor: " + v)
	}
	return cv, nil
}
