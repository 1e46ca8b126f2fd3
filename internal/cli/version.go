package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sadopc/tomato/internal/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", styleBrand.Render("tomato"), styleVersion.Render(app.Version))
			fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Commit:"), styleValue.Render(app.Commit))
			fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Built:"), styleValue.Render(app.BuildTime))
			fmt.Fprintf(out, "  %s %s/%s\n", styleLabel.Render("OS/Arch:"), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Go:"), runtime.Version())
		},
	}
}
