//go:build windows

package locator

import (
	"strings"
	"unsafe"

	gopsproc "github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/windows"
)

const (
	memCommit    = 0x1000
	pageNoAccess = 0x01
	pageGuard    = 0x100
	stillActive  = 259
)

// windowsBackend attaches to the target via OpenProcess and walks its address
// space with VirtualQueryEx/ReadProcessMemory, the standard pair for
// enumerating and reading another process's committed memory on Windows.
type windowsBackend struct {
	handle windows.Handle
	pid    uint32
}

func newPlatformBackend() backend {
	return &windowsBackend{}
}

func (b *windowsBackend) attach(processName string) error {
	pid, err := findPIDByName(processName)
	if err != nil {
		return &Error{Kind: ProcessNotRunning, Err: err}
	}

	is64, err := isProcess64Bit(pid)
	if err == nil && is64 {
		return &Error{Kind: UnsupportedTarget}
	}

	access := uint32(windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ)
	h, err := windows.OpenProcess(access, false, pid)
	if err != nil {
		return &Error{Kind: AccessDenied, Err: err}
	}

	b.handle = h
	b.pid = pid
	return nil
}

func (b *windowsBackend) detach() error {
	if b.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(b.handle)
	b.handle = 0
	return err
}

func (b *windowsBackend) enumerateRegions() ([]MemoryRegion, error) {
	var regions []MemoryRegion
	var addr uintptr
	var mbi windows.MemoryBasicInformation

	for {
		err := windows.VirtualQueryEx(b.handle, addr, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			// A query failure this early can mean either "reached the end of
			// the address space" (the normal case) or "the process is gone"
			// (the handle is now dead). Only the latter is ProcessNotRunning.
			if !b.isAlive() {
				return nil, &Error{Kind: ProcessNotRunning, Err: err}
			}
			break
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}

		readable := mbi.State == memCommit &&
			mbi.Protect&pageNoAccess == 0 &&
			mbi.Protect&pageGuard == 0
		if readable {
			regions = append(regions, MemoryRegion{
				Base:     Addr32(mbi.BaseAddress),
				Size:     uint32(mbi.RegionSize),
				Readable: true,
			})
		}

		addr = next
		if addr >= 0xFFFFFFFF {
			break
		}
	}

	return regions, nil
}

func (b *windowsBackend) read(addr Addr32, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(b.handle, uintptr(addr), &buf[0], uintptr(length), &bytesRead)
	if err != nil || bytesRead != uintptr(length) {
		if !b.isAlive() {
			return nil, &Error{Kind: ProcessNotRunning, Err: err}
		}
		return nil, &Error{Kind: ReadFailed, Address: addr, Err: err}
	}
	return buf, nil
}

// isAlive reports whether the attached process is still running, per
// GetExitCodeProcess. Used to tell a dead handle apart from a read or
// enumeration failure that's merely region-local.
func (b *windowsBackend) isAlive() bool {
	var code uint32
	if err := windows.GetExitCodeProcess(b.handle, &code); err != nil {
		return false
	}
	return code == stillActive
}

func findPIDByName(name string) (uint32, error) {
	procs, err := gopsproc.Processes()
	if err != nil {
		return 0, err
	}
	target := strings.ToLower(name)
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if strings.ToLower(pname) == target {
			return uint32(p.Pid), nil
		}
	}
	return 0, &Error{Kind: ProcessNotRunning}
}

func isProcess64Bit(pid uint32) (bool, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION, false, pid)
	if err != nil {
		return false, err
	}
	defer windows.CloseHandle(h)

	var wow64 bool
	if err := windows.IsWow64Process(h, &wow64); err != nil {
		return false, err
	}
	// A 32-bit process running on a 64-bit host reports wow64=true; a native
	// 32-bit host always reports wow64=false for every process. Either way a
	// true 64-bit target reports wow64=false while running on a 64-bit host.
	if isHost64Bit() && !wow64 {
		return true, nil
	}
	return false, nil
}
