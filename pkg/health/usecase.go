package health

import (
	"context"
	"errors"
	"fmt"
)

// Checker is one dependency probe.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase reports whether every dependency answers.
type ReadinessUseCase interface {
	Ready(ctx context.Context) (Report, error)
}

// Report maps checker name to "ok" or the failure text.
type Report map[string]string

type service struct {
	checkers []Checker
}

// NewService aggregates checkers. Nil checkers are skipped.
func NewService(checkers ...Checker) ReadinessUseCase {
	s := &service{}
	for _, c := range checkers {
		if c != nil {
			s.checkers = append(s.checkers, c)
		}
	}
	return s
}

// Ready runs every checker, so the report is complete even when an early
// one fails. The returned error joins all failures.
func (s *service) Ready(ctx context.Context) (Report, error) {
	report := make(Report, len(s.checkers))
	var errs []error
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			report[ch.Name()] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		report[ch.Name()] = "ok"
	}
	return report, errors.Join(errs...)
}
