package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/spf13/cobra"
)

// AddVersion gives root cobra's -v/--version flag, printing the module
// version and the VCS revision it was built from.
func AddVersion(root *cobra.Command) {
	root.Version = versioninfo.Version
	root.SetVersionTemplate(versionText(
		versioninfo.Version, versioninfo.Revision, versioninfo.LastCommit, versioninfo.DirtyBuild,
	))
}

func versionText(version, revision string, committed time.Time, dirty bool) string {
	var b strings.Builder
	fmt.Fprintln(&b, "Version:", version)
	fmt.Fprintln(&b, "Revision:", revision)
	if revision != "unknown" {
		fmt.Fprintln(&b, "Committed:", committed.Format(time.RFC1123))
		if dirty {
			fmt.Fprintln(&b, "Dirty Build")
		}
	}
	// The text is used as a template.
	return strings.ReplaceAll(b.String(), "{{", `{{"{{"}}`)
}
