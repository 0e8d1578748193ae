// Package platform sends desktop notifications through the native
// notification service of each operating system.
package platform

import "time"

// DefaultAppName identifies the application to the notification service.
const DefaultAppName = "ShineyMark"

// Options configures how a notification is shown.
type Options struct {
	// AppName overrides DefaultAppName.
	AppName string
	// IconPath points to an image shown with the notification where the
	// platform supports it.
	IconPath string
	// Timeout is how long the notification stays visible. Zero lets the
	// platform decide.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}
