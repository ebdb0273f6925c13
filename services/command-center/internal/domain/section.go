package domain

import (
	"context"
	"errors"
)

// SectionStatus tags a snapshot section as populated or degraded
type SectionStatus string

const (
	SectionPopulated SectionStatus = "populated"
	SectionDegraded  SectionStatus = "degraded"
)

// IssueCode explains why a section is degraded
type IssueCode string

const (
	IssueSourceUnavailable     IssueCode = "SOURCE_UNAVAILABLE"
	IssueConfigurationMissing  IssueCode = "CONFIGURATION_MISSING"
	IssueTimeout               IssueCode = "TIMEOUT"
	IssueDependencyUnavailable IssueCode = "DEPENDENCY_UNAVAILABLE"
	IssueInternal              IssueCode = "INTERNAL_ERROR"
)

// Issue is the reason attached to a degraded section
type Issue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

// IssueFromError classifies an engine error into an Issue
func IssueFromError(err error) Issue {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return Issue{Code: IssueTimeout, Message: err.Error()}
	case errors.Is(err, ErrConfigurationMissing):
		return Issue{Code: IssueConfigurationMissing, Message: err.Error()}
	case errors.Is(err, ErrDependencyUnavailable):
		return Issue{Code: IssueDependencyUnavailable, Message: err.Error()}
	default:
		return Issue{Code: IssueSourceUnavailable, Message: err.Error()}
	}
}

// Section is the tagged result of one engine. Data is authoritative only when
// Status is populated; a degraded section carries whatever partial result the
// engine produced together with the Issue.
type Section[T any] struct {
	Status   SectionStatus `json:"status"`
	Data     T             `json:"data"`
	Issue    *Issue        `json:"issue,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Populated builds a populated section
func Populated[T any](data T, warnings ...string) Section[T] {
	return Section[T]{Status: SectionPopulated, Data: data, Warnings: warnings}
}

// Degraded builds a degraded section with a partial or empty payload
func Degraded[T any](data T, issue Issue, warnings ...string) Section[T] {
	return Section[T]{Status: SectionDegraded, Data: data, Issue: &issue, Warnings: warnings}
}

// Value returns the payload and whether the section is populated
func (s Section[T]) Value() (T, bool) {
	return s.Data, s.Status == SectionPopulated
}

// Partial returns the payload regardless of status
func (s Section[T]) Partial() T {
	return s.Data
}

// IsDegraded reports whether the section is degraded
func (s Section[T]) IsDegraded() bool {
	return s.Status == SectionDegraded
}

// Reason returns the issue code of a degraded section, or "" when populated
func (s Section[T]) Reason() IssueCode {
	if s.Issue == nil {
		return ""
	}
	return s.Issue.Code
}
