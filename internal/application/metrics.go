package application

import "expvar"

// Counters served by the debug module at /api/debug/vars.
var (
	registrationsTotal = expvar.NewInt("auth_registrations")
	loginsTotal        = expvar.NewInt("auth_logins")
	loginFailuresTotal = expvar.NewInt("auth_login_failures")
	biometricBindTotal = expvar.NewInt("auth_biometric_binds")
)
