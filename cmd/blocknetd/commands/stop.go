package commands

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var stopTimeout time.Duration

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running Blocknet node",
	Long: `Stop a running blocknetd daemon.

Sends SIGTERM to the process recorded in the PID file and waits for it to
exit, so wallets get their terminal flush before the command returns.`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/blocknet/blocknetd.pid)")
	stopCmd.Flags().DurationVar(&stopTimeout, "timeout", 60*time.Second, "How long to wait for the node to exit")
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, running := readPid(pidPath)
	if !running {
		if pid != 0 {
			_ = os.Remove(pidPath)
		}
		return fmt.Errorf("blocknetd is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	fmt.Printf("Stopping blocknetd (PID %d)...\n", pid)

	deadline := time.Now().Add(stopTimeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			fmt.Println("blocknetd stopped")
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	return fmt.Errorf("blocknetd (PID %d) did not exit within %s", pid, stopTimeout)
}
