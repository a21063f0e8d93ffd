package app

import "github.com/hylla/gantt/internal/domain"

// TimeAmendHook may adjust a requested span before it is validated. Hooks run
// in registration order, each seeing the previous hook's output.
type TimeAmendHook func(key string, span domain.Span) domain.Span

// PostTimeHook observes a committed span.
type PostTimeHook func(key string, span domain.Span)

// RegisterTimeAmendHook appends an amendment hook.
func (s *Store) RegisterTimeAmendHook(fn TimeAmendHook) {
	if fn == nil {
		return
	}
	s.amendHooks = append(s.amendHooks, fn)
	s.logger.Debug("time amend hook registered", "count", len(s.amendHooks))
}

// RegisterPostTimeHook appends a post-commit hook.
func (s *Store) RegisterPostTimeHook(fn PostTimeHook) {
	if fn == nil {
		return
	}
	s.postHooks = append(s.postHooks, fn)
	s.logger.Debug("post time hook registered", "count", len(s.postHooks))
}

func (s *Store) runAmendHooks(key string, span domain.Span) domain.Span {
	for _, fn := range s.amendHooks {
		span = fn(key, span)
	}
	return span
}

func (s *Store) runPostHooks(key string, span domain.Span) {
	for _, fn := range s.postHooks {
		fn(key, span)
	}
}
