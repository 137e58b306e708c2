// Command flowcheck validates wizard flow files before they are deployed.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "flowcheck",
	Short:         "Validate registration wizard flow files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Check a flow file and print the resulting step order per mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lint(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in flows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printFlows(cmd.OutOrStdout(), wizard.DefaultFlows())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(defaultsCmd)
}

// lint reports every problem in the file on errOut, one per line.
func lint(out, errOut io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return err
	}
	defer f.Close()

	flows, err := wizard.ParseFlows(f)
	if err != nil {
		problems := multierr.Errors(err)
		for _, p := range problems {
			fmt.Fprintf(errOut, "%s: %v\n", path, p)
		}
		return fmt.Errorf("%s: %d problem(s)", path, len(problems))
	}
	printFlows(out, flows)
	return nil
}

func printFlows(out io.Writer, flows wizard.Flows) {
	for _, mode := range []wizard.Mode{wizard.ModeTeam, wizard.ModeSolo, wizard.ModeGuestTeam} {
		steps, err := flows.Load(mode)
		if err != nil {
			fmt.Fprintf(out, "%-10s  %v\n", mode, err)
			continue
		}
		keys := make([]string, len(steps))
		for i, st := range steps {
			keys[i] = string(st.Key)
		}
		fmt.Fprintf(out, "%-10s  %s\n", mode, strings.Join(keys, " -> "))
	}
}
