package commands

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// startDaemon starts the node as a background daemon process by
// re-executing itself with --foreground and detaching.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if pid, running := readPid(pidPath); running {
		return fmt.Errorf("blocknetd is already running (PID %d)\nUse 'blocknetd stop' to stop the running instance", pid)
	}
	// Stale PID file, remove it.
	_ = os.Remove(pidPath)

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}
	daemonArgs = append(daemonArgs, walletFlagArgs()...)

	cmd := exec.Command(executable, daemonArgs...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = logFileHandle.Close()

	fmt.Printf("blocknetd started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'blocknetd stop' to stop the node")

	return nil
}

// walletFlagArgs re-serializes the wallet flags the operator passed so
// the daemon child sees the same startup parameters.
func walletFlagArgs() []string {
	var args []string
	flags := startCmd.Flags()

	for _, w := range flagWallets {
		args = append(args, "--wallet", w)
	}
	if flagWalletDir != "" {
		args = append(args, "--walletdir", flagWalletDir)
	}
	for _, name := range []string{
		"disablewallet", "salvagewallet", "zapwallettxes", "upgradewallet",
		"insecureperms", "blocksonly", "pruned", "rescan",
		"walletbroadcast", "persistmempool",
	} {
		if flags.Changed(name) {
			value, _ := flags.GetBool(name)
			args = append(args, fmt.Sprintf("--%s=%v", name, value))
		}
	}
	if flags.Changed("paytxfee") {
		args = append(args, fmt.Sprintf("--paytxfee=%d", flagPayTxFee))
	}

	return args
}

// readPid reads a PID file and reports whether that process is alive.
func readPid(pidPath string) (int, bool) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, false
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return pid, false
	}
	return pid, true
}
