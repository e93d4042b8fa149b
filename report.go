package routegate

// Report is a read-only snapshot of the engine's effective posture,
// returned by [Engine.Report]. Useful for startup logging and
// operational introspection.
type Report struct {
	PublicRoutes      int
	AuthRoutes        int
	AdminRoutes       int
	UserRoutes        int
	TokenVerification bool
	DurableStore      bool
	AuditEnabled      bool
	MetricsEnabled    bool
	LoginRedirect     string
	UserDashboard     string
	AdminDashboard    string
	CallbackParam     string
}

// Report summarizes the engine configuration without exposing keys or
// internals.
func (e *Engine) Report() Report {
	if e == nil {
		return Report{}
	}
	t := e.config.Routes.Table
	return Report{
		PublicRoutes:      len(t.Public),
		AuthRoutes:        len(t.Auth),
		AdminRoutes:       len(t.Admin),
		UserRoutes:        len(t.User),
		TokenVerification: e.tokens != nil,
		DurableStore:      e.store != nil,
		AuditEnabled:      e.audit != nil,
		MetricsEnabled:    e.metrics.Enabled(),
		LoginRedirect:     e.config.Redirects.Login,
		UserDashboard:     e.config.Redirects.UserDashboard,
		AdminDashboard:    e.config.Redirects.AdminDashboard,
		CallbackParam:     e.config.Redirects.CallbackParam,
	}
}
