// Command rsb-device provisions a binder device node on binderfs: it makes
// sure the binderfs mount point exists and is mounted, asks the driver for a
// fresh named device via BINDER_CTL_ADD, and loosens the resulting node's
// permissions so unprivileged clients can open it.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/ehrlich-b/gobinder/internal/constants"
	"github.com/ehrlich-b/gobinder/internal/gateway"
	"github.com/ehrlich-b/gobinder/internal/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "rsb-device - create a binder device on binderfs")
		fmt.Fprintln(os.Stderr, "Usage: rsb-device <device_name>")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return
	}
	deviceName := flag.Arg(0)

	logger := logging.Default()

	if err := ensureBinderfsDir(logger); err != nil {
		logger.Error("failed to prepare binderfs mount point", "error", err)
		os.Exit(1)
	}

	if err := ensureBinderfsMounted(logger); err != nil {
		logger.Error("failed to mount binderfs", "error", err)
		os.Exit(1)
	}

	if err := addDevice(logger, deviceName); err != nil {
		logger.Error("failed to add binder device", "error", err)
		os.Exit(1)
	}
}

func ensureBinderfsDir(logger *logging.Logger) error {
	info, err := os.Stat(constants.DefaultBinderFsPath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(constants.DefaultBinderFsPath, 0755); err != nil {
			return fmt.Errorf("create %s: %w", constants.DefaultBinderFsPath, err)
		}
		logger.Info("created binderfs mount point", "path", constants.DefaultBinderFsPath)
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", constants.DefaultBinderFsPath)
	}
	logger.Info("binderfs mount point already exists", "path", constants.DefaultBinderFsPath)
	return nil
}

func isBinderfsMounted() bool {
	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return false
	}
	return strings.Contains(string(mounts), "binder")
}

func ensureBinderfsMounted(logger *logging.Logger) error {
	if isBinderfsMounted() {
		logger.Info("binderfs already mounted", "path", constants.DefaultBinderFsPath)
		return nil
	}
	cmd := exec.Command("mount", "-t", "binder", "binder", constants.DefaultBinderFsPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mount binderfs: %w: %s", err, out)
	}
	logger.Info("binderfs mounted", "path", constants.DefaultBinderFsPath)
	return nil
}

func addDevice(logger *logging.Logger, name string) error {
	gw, err := gateway.Open(gateway.Config{DevicePath: constants.DefaultBinderControlPath})
	if err != nil {
		return fmt.Errorf("open binderfs control device: %w", err)
	}
	defer gw.Close()

	major, minor, err := gw.AddBinderfsDevice(name)
	if err != nil {
		return fmt.Errorf("BINDER_CTL_ADD: %w", err)
	}
	logger.Info("allocated binder device", "name", name, "major", major, "minor", minor)

	devicePath := fmt.Sprintf("%s/%s", constants.DefaultBinderFsPath, name)
	if err := syscall.Chmod(devicePath, 0666); err != nil {
		return fmt.Errorf("chmod %s to 0666: %w", devicePath, err)
	}
	logger.Info("device permissions set to 0666", "path", devicePath)
	return nil
}
