package server

// displayServerInfo logs the effective server configuration at startup
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayTLSInfo()
}

func (s *Server) displayEndpoints() {
	endpoints := []string{
		"GET  /health",
		"GET  /stats",
		"POST /plan",
		"POST /plan/batch",
		"POST /match",
		"POST /validate",
	}
	if s.om.PrometheusHandler() != nil && s.servesMetricsInline() {
		endpoints = append(endpoints, "GET  "+s.metricsEndpoint())
	}
	s.Logger.Info("Available endpoints", "endpoints", endpoints)
}

func (s *Server) displayAuthInfo() {
	if n := s.APIKeys.Len(); n > 0 {
		s.Logger.Info("API authentication enabled", "keys", n)
		return
	}
	s.Logger.Warn("API authentication disabled, endpoints are publicly accessible")
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		s.Logger.Info("Request size limit",
			"bytes", s.MaxRequestSize,
			"megabytes", float64(s.MaxRequestSize)/(1024*1024))
		return
	}
	s.Logger.Warn("Request size limit disabled")
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter == nil {
		s.Logger.Warn("Rate limiting disabled")
		return
	}
	s.Logger.Info("Rate limiting enabled",
		"requests_per_min", s.RateLimit.RequestsPerMin,
		"burst", s.RateLimit.BurstCapacity,
		"by_api_key", s.RateLimit.ByAPIKey,
		"by_ip", s.RateLimit.ByIP)
}

func (s *Server) displayTLSInfo() {
	if s.CertificateManager == nil {
		s.Logger.Info("TLS disabled")
		return
	}
	s.Logger.Info("TLS enabled",
		"mode", s.TLSConfig.Mode,
		"min_version", s.TLSConfig.MinVersion,
		"auto_reload", s.TLSConfig.AutoReload.Enabled,
		"expires", s.CertificateManager.NotAfter())
}
