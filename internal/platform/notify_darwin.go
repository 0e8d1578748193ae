//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// Notify shows a notification through Notification Center using osascript.
// Icons are not supported by this route.
func Notify(title, body string, opts Options) error {
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, title, opts.appName())
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
