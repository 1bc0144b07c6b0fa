//go:build unix

package supervisor

import "syscall"

// daemonSysProcAttr detaches the daemon child into its own session so it
// survives the parent's terminal closing, per spec.md §4.3's "create a
// new session" step.
func daemonSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
