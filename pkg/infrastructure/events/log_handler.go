package events

import "log/slog"

// NewLogHandler returns a handler that logs every event of the given types as a
// plan_degraded warning
func NewLogHandler(logger *slog.Logger, eventTypes ...string) *HandlerFunc {
	return &HandlerFunc{
		Types: eventTypes,
		Fn: func(event Event) error {
			logger.Warn("plan_degraded",
				"event_type", event.Type(),
				"run_id", event.StreamID(),
				"version", event.Version(),
				"data", event.Data(),
			)
			return nil
		},
	}
}

// DegradedEventTypes are the events that mark a plan as worse than requested
func DegradedEventTypes() []string {
	return []string{ShortageIdentifiedEvent, PlanCritiqueFailedEvent}
}
