package application

import "expvar"

// Counters published on /api/debug/vars.
var (
	metricUsersRegistered = expvar.NewInt("users_registered")
	metricLogins          = expvar.NewInt("logins")
	metricAuthFailures    = expvar.NewInt("auth_failures")
	metricTasksCreated    = expvar.NewInt("tasks_created")
	metricTasksUpdated    = expvar.NewInt("tasks_updated")
	metricTasksDeleted    = expvar.NewInt("tasks_deleted")
)
