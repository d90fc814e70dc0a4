package encounters

import "time"

//go:generate mockgen -destination=mock/mock_time_provider.go -package=mockencrepo github.com/KirkDiggler/dnd-tactics/internal/repositories/encounters TimeProvider

type TimeProvider interface {
	Now() time.Time
}

type RealTimeProvider struct{}

func (r *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
