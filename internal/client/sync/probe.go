package sync

import "context"

// CheckConnectivity делает один health запрос с ограниченным таймаутом.
// Любая ошибка, таймаут или не-2xx ответ означают недоступность.
func (s *service) CheckConnectivity(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	if err := s.apiClient.Health(probeCtx); err != nil {
		s.logger.Debug("Health check failed", "error", err)
		return false
	}
	return true
}
