package config

const (
	defaultDataDir                = "~/.local/share/talentpipe"
	defaultLogDir                 = "~/.local/share/talentpipe/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultOverloadedThreshold    = 90.0
	defaultUnderutilizedThreshold = 40.0
	defaultDeadlineWarningDays    = 7
	defaultCapacityPolicy         = CapacityPolicyAdvisory
	defaultNotifyRequestTimeout   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Alerts: Alerts{
			OverloadedThreshold:    defaultOverloadedThreshold,
			UnderutilizedThreshold: defaultUnderutilizedThreshold,
			DeadlineWarningDays:    defaultDeadlineWarningDays,
		},
		Assignments: Assignments{
			CapacityPolicy: defaultCapacityPolicy,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Assignments:    true,
			Pipelines:      false,
			Overload:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
