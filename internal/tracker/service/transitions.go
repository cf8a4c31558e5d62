package service

import (
	"fmt"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type transition struct {
	from domain.Status
	to   domain.Status
}

// TransitionPolicy is an allow-list of status changes. The zero value and
// AllowAll permit every pair. Keeping the same status is always allowed.
type TransitionPolicy struct {
	allowed map[transition]struct{}
}

func AllowAll() TransitionPolicy {
	return TransitionPolicy{}
}

// NewTransitionPolicy permits exactly the given pairs.
func NewTransitionPolicy(pairs ...[2]domain.Status) TransitionPolicy {
	p := TransitionPolicy{allowed: make(map[transition]struct{}, len(pairs))}
	for _, pair := range pairs {
		p.allowed[transition{from: pair[0], to: pair[1]}] = struct{}{}
	}
	return p
}

// ParseTransitions reads "OPEN>IN_PROGRESS,IN_PROGRESS>RESOLVED". An empty
// string yields AllowAll.
func ParseTransitions(raw string) (TransitionPolicy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AllowAll(), nil
	}

	var pairs [][2]domain.Status
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		from, to, ok := strings.Cut(item, ">")
		if !ok {
			return TransitionPolicy{}, fmt.Errorf("transition %q: expected FROM>TO", item)
		}
		f, err := domain.ParseStatus(from)
		if err != nil {
			return TransitionPolicy{}, fmt.Errorf("transition %q: %w", item, err)
		}
		t, err := domain.ParseStatus(to)
		if err != nil {
			return TransitionPolicy{}, fmt.Errorf("transition %q: %w", item, err)
		}
		pairs = append(pairs, [2]domain.Status{f, t})
	}
	if len(pairs) == 0 {
		return AllowAll(), nil
	}
	return NewTransitionPolicy(pairs...), nil
}

func (p TransitionPolicy) Unrestricted() bool {
	return p.allowed == nil
}

func (p TransitionPolicy) Allows(from, to domain.Status) bool {
	if from == to || p.allowed == nil {
		return true
	}
	_, ok := p.allowed[transition{from: from, to: to}]
	return ok
}

// Check returns domain.ErrInvalidTransition when the pair is not allowed.
func (p TransitionPolicy) Check(from, to domain.Status) error {
	if p.Allows(from, to) {
		return nil
	}
	return domain.InvalidTransition(from, to)
}
